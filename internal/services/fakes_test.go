package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tendjournal/tend/internal/analyzer"
	"github.com/tendjournal/tend/internal/history"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// fakeStore is a map-backed Store used across the service tests.
type fakeStore struct {
	users     map[string]*model.User
	areas     map[string]*model.GrowthArea // key userID+"/"+areaID
	entries   map[string]*model.JournalEntry
	summaries map[string]*model.MemorySummary
	seq       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]*model.User{},
		areas:     map[string]*model.GrowthArea{},
		entries:   map[string]*model.JournalEntry{},
		summaries: map[string]*model.MemorySummary{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) Users() store.Users             { return (*fakeUsers)(f) }
func (f *fakeStore) GrowthAreas() store.GrowthAreas { return (*fakeAreas)(f) }
func (f *fakeStore) Entries() store.Entries         { return (*fakeEntries)(f) }
func (f *fakeStore) Summaries() store.Summaries     { return (*fakeSummaries)(f) }

type fakeUsers fakeStore

func (f *fakeUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, model.ErrConflict
		}
	}
	out := *u
	out.UserID = (*fakeStore)(f).nextID("user")
	out.CreationTime = time.Now().UTC()
	f.users[out.UserID] = &out
	return &out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID string) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeUsers) Delete(_ context.Context, userID string) error {
	if _, ok := f.users[userID]; !ok {
		return model.ErrNotFound
	}
	delete(f.users, userID)
	return nil
}

type fakeAreas fakeStore

func (f *fakeAreas) key(userID, areaID string) string { return userID + "/" + areaID }

func (f *fakeAreas) Create(_ context.Context, a *model.GrowthArea) (*model.GrowthArea, error) {
	for _, existing := range f.areas {
		if existing.UserID == a.UserID && existing.Name == a.Name {
			return nil, model.ErrConflict
		}
	}
	out := *a
	out.AreaID = (*fakeStore)(f).nextID("area")
	out.CreationTime = time.Now().UTC()
	f.areas[f.key(out.UserID, out.AreaID)] = &out
	return &out, nil
}

func (f *fakeAreas) Get(_ context.Context, userID, areaID string) (*model.GrowthArea, error) {
	a, ok := f.areas[f.key(userID, areaID)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return a, nil
}

func (f *fakeAreas) List(_ context.Context, userID string, activeOnly bool) ([]*model.GrowthArea, error) {
	var out []*model.GrowthArea
	for _, a := range f.areas {
		if a.UserID != userID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime.Before(out[j].CreationTime) })
	return out, nil
}

func (f *fakeAreas) Update(_ context.Context, a *model.GrowthArea) (*model.GrowthArea, error) {
	k := f.key(a.UserID, a.AreaID)
	if _, ok := f.areas[k]; !ok {
		return nil, model.ErrNotFound
	}
	cp := *a
	f.areas[k] = &cp
	return &cp, nil
}

func (f *fakeAreas) Replace(_ context.Context, userID string, list []*model.GrowthArea) ([]*model.GrowthArea, error) {
	for k, a := range f.areas {
		if a.UserID == userID {
			delete(f.areas, k)
		}
	}
	var out []*model.GrowthArea
	for _, a := range list {
		cp := *a
		cp.UserID = userID
		cp.AreaID = (*fakeStore)(f).nextID("area")
		cp.CreationTime = time.Now().UTC()
		f.areas[f.key(userID, cp.AreaID)] = &cp
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAreas) Delete(_ context.Context, userID, areaID string) error {
	k := f.key(userID, areaID)
	if _, ok := f.areas[k]; !ok {
		return model.ErrNotFound
	}
	delete(f.areas, k)
	return nil
}

type fakeEntries fakeStore

func (f *fakeEntries) Create(_ context.Context, e *model.JournalEntry) (*model.JournalEntry, error) {
	out := *e
	out.EntryID = (*fakeStore)(f).nextID("entry")
	out.CreationTime = time.Now().UTC().Add(time.Duration(f.seq) * time.Millisecond)
	f.entries[out.UserID+"/"+out.EntryID] = &out
	return &out, nil
}

func (f *fakeEntries) GetByID(_ context.Context, userID, entryID string) (*model.JournalEntry, error) {
	e, ok := f.entries[userID+"/"+entryID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return e, nil
}

func (f *fakeEntries) all(userID string) []*model.JournalEntry {
	var out []*model.JournalEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime.Before(out[j].CreationTime) })
	return out
}

func (f *fakeEntries) List(_ context.Context, req model.ListEntriesRequest) ([]*model.JournalEntry, error) {
	asc := f.all(req.UserID)
	// newest first
	var desc []*model.JournalEntry
	for i := len(asc) - 1; i >= 0; i-- {
		desc = append(desc, asc[i])
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if req.Offset >= len(desc) {
		return nil, nil
	}
	end := req.Offset + limit
	if end > len(desc) {
		end = len(desc)
	}
	return desc[req.Offset:end], nil
}

func (f *fakeEntries) ListAllAsc(_ context.Context, userID string) ([]*model.JournalEntry, error) {
	return f.all(userID), nil
}

func (f *fakeEntries) Count(_ context.Context, userID string) (int, error) {
	return len(f.all(userID)), nil
}

func (f *fakeEntries) Delete(_ context.Context, userID, entryID string) error {
	k := userID + "/" + entryID
	if _, ok := f.entries[k]; !ok {
		return model.ErrNotFound
	}
	delete(f.entries, k)
	return nil
}

type fakeSummaries fakeStore

func (f *fakeSummaries) Upsert(_ context.Context, s *model.MemorySummary) (*model.MemorySummary, error) {
	out := *s
	out.LastUpdated = time.Now().UTC()
	f.summaries[out.UserID] = &out
	return &out, nil
}

func (f *fakeSummaries) Get(_ context.Context, userID string) (*model.MemorySummary, error) {
	s, ok := f.summaries[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return s, nil
}

// fakeAnalyzer returns canned results and records its inputs.
type fakeAnalyzer struct {
	note        *model.GrowthNote
	meta        analyzer.Meta
	analyzeErr  error
	ocrText     string
	ocrErr      error
	gotText     string
	gotAreas    []*model.GrowthArea
	gotHist     *history.Context
	ocrReceived []byte
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string, areas []*model.GrowthArea, hist *history.Context) (*model.GrowthNote, analyzer.Meta, error) {
	f.gotText = text
	f.gotAreas = areas
	f.gotHist = hist
	if f.analyzeErr != nil {
		return nil, analyzer.Meta{}, f.analyzeErr
	}
	return f.note, f.meta, nil
}

func (f *fakeAnalyzer) ExtractText(_ context.Context, image []byte, _ string) (string, analyzer.Meta, error) {
	f.ocrReceived = image
	if f.ocrErr != nil {
		return "", analyzer.Meta{}, f.ocrErr
	}
	return f.ocrText, analyzer.Meta{}, nil
}

// fakeBlob records puts and deletes.
type fakeBlob struct {
	putErr  error
	puts    int
	deletes []string
}

func (f *fakeBlob) Put(_ context.Context, _ []byte, _ string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts++
	return fmt.Sprintf("uploads/entries/img-%d.png", f.puts), nil
}

func (f *fakeBlob) Delete(_ context.Context, url string) error {
	f.deletes = append(f.deletes, url)
	return nil
}
