package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// Open connects to Postgres using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New connects, bootstraps the schema and returns a store.
func New(dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection (used by integration tests).
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users             { return &users{db: s.db} }
func (s *pgStore) GrowthAreas() store.GrowthAreas { return &areas{db: s.db} }
func (s *pgStore) Entries() store.Entries         { return &entries{db: s.db} }
func (s *pgStore) Summaries() store.Summaries     { return &summaries{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
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
		`INSERT INTO users (user_id, email, password_hash, creation_time) VALUES ($1,$2,$3,$4)`,
		out.UserID, out.Email, out.PasswordHash, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx,
		`SELECT user_id, email, password_hash, creation_time FROM users WHERE user_id = $1`, userID)
	return scanUser(row)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx,
		`SELECT user_id, email, password_hash, creation_time FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
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
		`INSERT INTO growth_areas (user_id, area_id, name, description, is_active, creation_time)
         VALUES ($1,$2,$3,$4,$5,$6)`,
		out.UserID, out.AreaID, out.Name, out.Description, out.IsActive, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (a *areas) Get(ctx context.Context, userID, areaID string) (*model.GrowthArea, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT user_id, area_id, name, description, is_active, creation_time
         FROM growth_areas WHERE user_id = $1 AND area_id = $2`, userID, areaID)
	return scanArea(row)
}

func (a *areas) List(ctx context.Context, userID string, activeOnly bool) ([]*model.GrowthArea, error) {
	q := `SELECT user_id, area_id, name, description, is_active, creation_time
          FROM growth_areas WHERE user_id = $1`
	if activeOnly {
		q += ` AND is_active`
	}
	q += ` ORDER BY creation_time ASC, area_id ASC`
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
		`UPDATE growth_areas SET name = $1, description = $2, is_active = $3
         WHERE user_id = $4 AND area_id = $5`,
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM growth_areas WHERE user_id = $1`, userID); err != nil {
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
			`INSERT INTO growth_areas (user_id, area_id, name, description, is_active, creation_time)
             VALUES ($1,$2,$3,$4,$5,$6)`,
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
		`DELETE FROM growth_areas WHERE user_id = $1 AND area_id = $2`, userID, areaID)
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
		`INSERT INTO journal_entries
            (user_id, entry_id, raw_text, image_url, growth_note, processing_time_seconds, ai_model, api_cost, creation_time)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		out.UserID, out.EntryID, out.RawText, nullStr(out.ImageURL), note,
		out.ProcessingTimeSeconds, out.AIModel, out.APICost, out.CreationTime)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (e *entries) GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	row := e.db.QueryRowContext(ctx,
		`SELECT user_id, entry_id, raw_text, image_url, growth_note, processing_time_seconds, ai_model, api_cost, creation_time
         FROM journal_entries WHERE user_id = $1 AND entry_id = $2`, userID, entryID)
	var m model.JournalEntry
	var img, note sql.NullString
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
		`SELECT user_id, entry_id, raw_text, image_url, growth_note, processing_time_seconds, ai_model, api_cost, creation_time
         FROM journal_entries WHERE user_id = $1
         ORDER BY creation_time DESC, entry_id DESC LIMIT $2 OFFSET $3`,
		req.UserID, limit, req.Offset)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectEntries(rows)
}

func (e *entries) ListAllAsc(ctx context.Context, userID string) ([]*model.JournalEntry, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT user_id, entry_id, raw_text, image_url, growth_note, processing_time_seconds, ai_model, api_cost, creation_time
         FROM journal_entries WHERE user_id = $1
         ORDER BY creation_time ASC, entry_id ASC`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectEntries(rows)
}

func (e *entries) Count(ctx context.Context, userID string) (int, error) {
	var n int
	row := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries WHERE user_id = $1`, userID)
	if err := row.Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (e *entries) Delete(ctx context.Context, userID, entryID string) error {
	res, err := e.db.ExecContext(ctx,
		`DELETE FROM journal_entries WHERE user_id = $1 AND entry_id = $2`, userID, entryID)
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
		var img, note sql.NullString
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
		`INSERT INTO memory_summaries (user_id, last_updated, growth_timelines) VALUES ($1,$2,$3)
         ON CONFLICT (user_id) DO UPDATE SET last_updated = EXCLUDED.last_updated, growth_timelines = EXCLUDED.growth_timelines`,
		out.UserID, out.LastUpdated, string(blob))
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (s *summaries) Get(ctx context.Context, userID string) (*model.MemorySummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, last_updated, growth_timelines FROM memory_summaries WHERE user_id = $1`, userID)
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
