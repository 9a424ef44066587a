package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode for better concurrency under read-heavy workloads.
// The special path ":memory:" opens a throwaway in-memory database.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates core tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Users (
            UserId TEXT PRIMARY KEY,
            Email TEXT NOT NULL UNIQUE,
            PasswordHash TEXT NOT NULL,
            CreationTime TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS GrowthAreas (
            UserId TEXT NOT NULL,
            AreaId TEXT NOT NULL,
            Name TEXT NOT NULL,
            Description TEXT NOT NULL DEFAULT '',
            IsActive BOOLEAN NOT NULL DEFAULT 1,
            CreationTime TIMESTAMP NOT NULL,
            PRIMARY KEY(UserId, AreaId),
            UNIQUE(UserId, Name)
        );`,
		`CREATE TABLE IF NOT EXISTS JournalEntries (
            UserId TEXT NOT NULL,
            EntryId TEXT NOT NULL,
            RawText TEXT NOT NULL,
            ImageUrl TEXT,
            GrowthNote TEXT,
            ProcessingTimeSeconds REAL NOT NULL DEFAULT 0,
            AiModel TEXT NOT NULL DEFAULT '',
            ApiCost REAL NOT NULL DEFAULT 0,
            CreationTime TIMESTAMP NOT NULL,
            PRIMARY KEY(UserId, EntryId)
        );`,
		`CREATE INDEX IF NOT EXISTS JournalEntriesByUserTime
            ON JournalEntries(UserId, CreationTime);`,
		`CREATE TABLE IF NOT EXISTS MemorySummaries (
            UserId TEXT PRIMARY KEY,
            LastUpdated TIMESTAMP NOT NULL,
            GrowthTimelines TEXT NOT NULL DEFAULT '[]'
        );`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// New opens a SQLite database file, bootstraps the schema and returns a store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB allows wiring with an existing connection (used by factory and tests).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users             { return &users{db: s.db} }
func (s *sqliteStore) GrowthAreas() store.GrowthAreas { return &areas{db: s.db} }
func (s *sqliteStore) Entries() store.Entries         { return &entries{db: s.db} }
func (s *sqliteStore) Summaries() store.Summaries     { return &summaries{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return model.ErrConflict
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	_, err := u.db.ExecContext(ctx,
		`INSERT INTO Users (UserId, Email, PasswordHash, CreationTime) VALUES (?,?,?,?)`,
		out.UserID, out.Email, out.PasswordHash, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx,
		`SELECT UserId, Email, PasswordHash, CreationTime FROM Users WHERE UserId = ?`, userID)
	return scanUser(row)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx,
		`SELECT UserId, Email, PasswordHash, CreationTime FROM Users WHERE Email = ?`, email)
	return scanUser(row)
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM Users WHERE UserId = ?`, userID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	if err := row.Scan(&out.UserID, &out.Email, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// --- Growth areas ---

type areas struct{ db *sql.DB }

func (a *areas) Create(ctx context.Context, m *model.GrowthArea) (*model.GrowthArea, error) {
	out := *m
	if out.AreaID == "" {
		out.AreaID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO GrowthAreas (UserId, AreaId, Name, Description, IsActive, CreationTime) VALUES (?,?,?,?,?,?)`,
		out.UserID, out.AreaID, out.Name, out.Description, out.IsActive, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (a *areas) Get(ctx context.Context, userID, areaID string) (*model.GrowthArea, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT UserId, AreaId, Name, Description, IsActive, CreationTime
         FROM GrowthAreas WHERE UserId = ? AND AreaId = ?`, userID, areaID)
	return scanArea(row)
}

func (a *areas) List(ctx context.Context, userID string, activeOnly bool) ([]*model.GrowthArea, error) {
	q := `SELECT UserId, AreaId, Name, Description, IsActive, CreationTime
          FROM GrowthAreas WHERE UserId = ?`
	if activeOnly {
		q += ` AND IsActive = 1`
	}
	q += ` ORDER BY CreationTime ASC, AreaId ASC`
	rows, err := a.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.GrowthArea
	for rows.Next() {
		var m model.GrowthArea
		if err := rows.Scan(&m.UserID, &m.AreaID, &m.Name, &m.Description, &m.IsActive, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (a *areas) Update(ctx context.Context, m *model.GrowthArea) (*model.GrowthArea, error) {
	res, err := a.db.ExecContext(ctx,
		`UPDATE GrowthAreas SET Name = ?, Description = ?, IsActive = ? WHERE UserId = ? AND AreaId = ?`,
		m.Name, m.Description, m.IsActive, m.UserID, m.AreaID)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return a.Get(ctx, m.UserID, m.AreaID)
}

func (a *areas) Replace(ctx context.Context, userID string, list []*model.GrowthArea) ([]*model.GrowthArea, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM GrowthAreas WHERE UserId = ?`, userID); err != nil {
		return nil, mapErr(err)
	}
	out := make([]*model.GrowthArea, 0, len(list))
	for _, m := range list {
		cp := *m
		cp.UserID = userID
		if cp.AreaID == "" {
			cp.AreaID = uuid.New().String()
		}
		if cp.CreationTime.IsZero() {
			cp.CreationTime = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO GrowthAreas (UserId, AreaId, Name, Description, IsActive, CreationTime) VALUES (?,?,?,?,?,?)`,
			cp.UserID, cp.AreaID, cp.Name, cp.Description, cp.IsActive, cp.CreationTime); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &cp)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *areas) Delete(ctx context.Context, userID, areaID string) error {
	res, err := a.db.ExecContext(ctx,
		`DELETE FROM GrowthAreas WHERE UserId = ? AND AreaId = ?`, userID, areaID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanArea(row *sql.Row) (*model.GrowthArea, error) {
	var m model.GrowthArea
	if err := row.Scan(&m.UserID, &m.AreaID, &m.Name, &m.Description, &m.IsActive, &m.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// --- Entries ---

type entries struct{ db *sql.DB }

func (e *entries) Create(ctx context.Context, m *model.JournalEntry) (*model.JournalEntry, error) {
	out := *m
	if out.EntryID == "" {
		out.EntryID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()
	note, err := marshalNote(out.GrowthNote)
	if err != nil {
		return nil, err
	}
	_, err = e.db.ExecContext(ctx,
		`INSERT INTO JournalEntries (UserId, EntryId, RawText, ImageUrl, GrowthNote, ProcessingTimeSeconds, AiModel, ApiCost, CreationTime)
         VALUES (?,?,?,?,?,?,?,?,?)`,
		out.UserID, out.EntryID, out.RawText, nullStr(out.ImageURL), note,
		out.ProcessingTimeSeconds, out.AIModel, out.APICost, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (e *entries) GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	row := e.db.QueryRowContext(ctx,
		`SELECT UserId, EntryId, RawText, ImageUrl, GrowthNote, ProcessingTimeSeconds, AiModel, ApiCost, CreationTime
         FROM JournalEntries WHERE UserId = ? AND EntryId = ?`, userID, entryID)
	var m model.JournalEntry
	var img sql.NullString
	var note sql.NullString
	if err := row.Scan(&m.UserID, &m.EntryID, &m.RawText, &img, &note,
		&m.ProcessingTimeSeconds, &m.AIModel, &m.APICost, &m.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	m.ImageURL = img.String
	gn, err := unmarshalNote(note)
	if err != nil {
		return nil, err
	}
	m.GrowthNote = gn
	return &m, nil
}

func (e *entries) List(ctx context.Context, req model.ListEntriesRequest) ([]*model.JournalEntry, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	rows, err := e.db.QueryContext(ctx,
		`SELECT UserId, EntryId, RawText, ImageUrl, GrowthNote, ProcessingTimeSeconds, AiModel, ApiCost, CreationTime
         FROM JournalEntries WHERE UserId = ?
         ORDER BY CreationTime DESC, EntryId DESC LIMIT ? OFFSET ?`,
		req.UserID, limit, req.Offset)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectEntries(rows)
}

func (e *entries) ListAllAsc(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT UserId, EntryId, RawText, ImageUrl, GrowthNote, ProcessingTimeSeconds, AiModel, ApiCost, CreationTime
         FROM JournalEntries WHERE UserId = ?
         ORDER BY CreationTime ASC, EntryId ASC`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectEntries(rows)
}

func (e *entries) Count(ctx context.Context, userID string) (int, error) {
	var n int
	row := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM JournalEntries WHERE UserId = ?`, userID)
	if err := row.Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (e *entries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := e.db.ExecContext(ctx,
		`DELETE FROM JournalEntries WHERE UserId = ? AND EntryId = ?`, userID, entryID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func collectEntries(rows *sql.Rows) ([]*model.JournalEntry, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.JournalEntry
	for rows.Next() {
		var m model.JournalEntry
		var img sql.NullString
		var note sql.NullString
		if err := rows.Scan(&m.UserID, &m.EntryID, &m.RawText, &img, &note,
			&m.ProcessingTimeSeconds, &m.AIModel, &m.APICost, &m.CreationTime); err != nil {
			return nil, err
		}
		m.ImageURL = img.String
		gn, err := unmarshalNote(note)
		if err != nil {
			return nil, err
		}
		m.GrowthNote = gn
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Summaries ---

type summaries struct{ db *sql.DB }

func (s *summaries) Upsert(ctx context.Context, m *model.MemorySummary) (*model.MemorySummary, error) {
	out := *m
	out.LastUpdated = time.Now().UTC()
	blob, err := json.Marshal(out.GrowthTimelines)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO MemorySummaries (UserId, LastUpdated, GrowthTimelines) VALUES (?,?,?)
         ON CONFLICT(UserId) DO UPDATE SET LastUpdated = excluded.LastUpdated, GrowthTimelines = excluded.GrowthTimelines`,
		out.UserID, out.LastUpdated, string(blob))
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (s *summaries) Get(ctx context.Context, userID string) (*model.MemorySummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT UserId, LastUpdated, GrowthTimelines FROM MemorySummaries WHERE UserId = ?`, userID)
	var m model.MemorySummary
	var blob string
	if err := row.Scan(&m.UserID, &m.LastUpdated, &blob); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal([]byte(blob), &m.GrowthTimelines); err != nil {
		return nil, err
	}
	return &m, nil
}

func marshalNote(n *model.GrowthNote) (sql.NullString, error) {
	if n == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(n)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalNote(v sql.NullString) (*model.GrowthNote, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var n model.GrowthNote
	if err := json.Unmarshal([]byte(v.String), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
