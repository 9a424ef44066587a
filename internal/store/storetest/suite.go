// Package storetest contains a reusable compliance suite that every Store
// adapter must pass. Driver packages invoke Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// Factory returns a fresh, empty Store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the full compliance suite against stores built by f.
func Run(t *testing.T, f Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, f(t)) })
	t.Run("GrowthAreas", func(t *testing.T) { testGrowthAreas(t, f(t)) })
	t.Run("Entries", func(t *testing.T) { testEntries(t, f(t)) })
	t.Run("Summaries", func(t *testing.T) { testSummaries(t, f(t)) })
}

func newUser(t *testing.T, s store.Store, email string) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &model.User{
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	})
	require.NoError(t, err)
	return u
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := newUser(t, s, "alice@example.com")
	require.NotEmpty(t, u.UserID)
	require.False(t, u.CreationTime.IsZero())

	got, err := s.Users().GetByID(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	byEmail, err := s.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, byEmail.UserID)

	// duplicate email is rejected
	_, err = s.Users().Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = s.Users().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Users().GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Users().Delete(ctx, u.UserID))
	assert.ErrorIs(t, s.Users().Delete(ctx, u.UserID), model.ErrNotFound)
}

func testGrowthAreas(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "areas@example.com")

	a, err := s.GrowthAreas().Create(ctx, &model.GrowthArea{
		UserID: u.UserID, Name: "Communication", Description: "speak up more", IsActive: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, a.AreaID)

	// same name for the same user is rejected
	_, err = s.GrowthAreas().Create(ctx, &model.GrowthArea{
		UserID: u.UserID, Name: "Communication", IsActive: true,
	})
	assert.ErrorIs(t, err, model.ErrConflict)

	// but another user may reuse the name
	other := newUser(t, s, "other@example.com")
	_, err = s.GrowthAreas().Create(ctx, &model.GrowthArea{
		UserID: other.UserID, Name: "Communication", IsActive: true,
	})
	require.NoError(t, err)

	b, err := s.GrowthAreas().Create(ctx, &model.GrowthArea{
		UserID: u.UserID, Name: "Health", IsActive: false,
	})
	require.NoError(t, err)

	all, err := s.GrowthAreas().List(ctx, u.UserID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := s.GrowthAreas().List(ctx, u.UserID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Communication", active[0].Name)

	b.IsActive = true
	b.Description = "sleep earlier"
	upd, err := s.GrowthAreas().Update(ctx, b)
	require.NoError(t, err)
	assert.True(t, upd.IsActive)
	assert.Equal(t, "sleep earlier", upd.Description)

	missing := *b
	missing.AreaID = "missing"
	_, err = s.GrowthAreas().Update(ctx, &missing)
	assert.ErrorIs(t, err, model.ErrNotFound)

	replaced, err := s.GrowthAreas().Replace(ctx, u.UserID, []*model.GrowthArea{
		{Name: "Productivity", IsActive: true},
		{Name: "Patience", IsActive: true},
	})
	require.NoError(t, err)
	require.Len(t, replaced, 2)
	all, err = s.GrowthAreas().List(ctx, u.UserID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Productivity", all[0].Name)

	require.NoError(t, s.GrowthAreas().Delete(ctx, u.UserID, replaced[0].AreaID))
	assert.ErrorIs(t, s.GrowthAreas().Delete(ctx, u.UserID, replaced[0].AreaID), model.ErrNotFound)

	// replace did not touch the other user's areas
	otherAreas, err := s.GrowthAreas().List(ctx, other.UserID, false)
	require.NoError(t, err)
	require.Len(t, otherAreas, 1)
}

func testEntries(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "entries@example.com")

	note := &model.GrowthNote{
		DetectedAreas: []model.DetectedArea{{
			AreaName:          "Communication",
			EvidenceSnippet:   "Had a hard conversation with my manager",
			ProgressIndicator: model.ProgressImproving,
		}},
		KeyMoments:        []string{"spoke up in the meeting"},
		ActionableInsight: "Keep initiating difficult conversations",
		OverallSentiment:  model.SentimentPositive,
	}

	e, err := s.Entries().Create(ctx, &model.JournalEntry{
		UserID:                u.UserID,
		RawText:               "Had a hard conversation with my manager today.",
		GrowthNote:            note,
		ProcessingTimeSeconds: 1.25,
		AIModel:               "gemini-2.0-flash",
	})
	require.NoError(t, err)
	require.NotEmpty(t, e.EntryID)

	got, err := s.Entries().GetByID(ctx, u.UserID, e.EntryID)
	require.NoError(t, err)
	require.NotNil(t, got.GrowthNote)
	assert.Equal(t, note.DetectedAreas, got.GrowthNote.DetectedAreas)
	assert.Equal(t, note.ActionableInsight, got.GrowthNote.ActionableInsight)
	assert.Equal(t, model.SentimentPositive, got.GrowthNote.OverallSentiment)
	assert.Empty(t, got.ImageURL)

	// entry with no analysis yet round-trips a nil note
	bare, err := s.Entries().Create(ctx, &model.JournalEntry{
		UserID: u.UserID, RawText: "quick note", ImageURL: "uploads/abc.png",
	})
	require.NoError(t, err)
	got, err = s.Entries().GetByID(ctx, u.UserID, bare.EntryID)
	require.NoError(t, err)
	assert.Nil(t, got.GrowthNote)
	assert.Equal(t, "uploads/abc.png", got.ImageURL)

	for i := 0; i < 3; i++ {
		_, err := s.Entries().Create(ctx, &model.JournalEntry{
			UserID: u.UserID, RawText: fmt.Sprintf("entry %d", i),
		})
		require.NoError(t, err)
	}

	n, err := s.Entries().Count(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	page, err := s.Entries().List(ctx, model.ListEntriesRequest{UserID: u.UserID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	// newest first
	assert.False(t, page[0].CreationTime.Before(page[1].CreationTime))

	next, err := s.Entries().List(ctx, model.ListEntriesRequest{UserID: u.UserID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.NotEqual(t, page[0].EntryID, next[0].EntryID)

	asc, err := s.Entries().ListAllAsc(ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, asc, 5)
	for i := 1; i < len(asc); i++ {
		assert.False(t, asc[i].CreationTime.Before(asc[i-1].CreationTime))
	}

	// another user sees nothing
	stranger := newUser(t, s, "stranger@example.com")
	_, err = s.Entries().GetByID(ctx, stranger.UserID, e.EntryID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Entries().Delete(ctx, u.UserID, e.EntryID))
	assert.ErrorIs(t, s.Entries().Delete(ctx, u.UserID, e.EntryID), model.ErrNotFound)
}

func testSummaries(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "summary@example.com")

	_, err := s.Summaries().Get(ctx, u.UserID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	first, err := s.Summaries().Upsert(ctx, &model.MemorySummary{
		UserID: u.UserID,
		GrowthTimelines: []model.AreaRollup{
			{AreaName: "Communication", Mentions: 1, LastProgress: model.ProgressFirstMention, LastMention: time.Now().UTC()},
		},
	})
	require.NoError(t, err)
	require.False(t, first.LastUpdated.IsZero())

	got, err := s.Summaries().Get(ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, got.GrowthTimelines, 1)
	assert.Equal(t, "Communication", got.GrowthTimelines[0].AreaName)

	_, err = s.Summaries().Upsert(ctx, &model.MemorySummary{
		UserID: u.UserID,
		GrowthTimelines: []model.AreaRollup{
			{AreaName: "Communication", Mentions: 2, LastProgress: model.ProgressImproving, LastMention: time.Now().UTC()},
			{AreaName: "Health", Mentions: 1, LastProgress: model.ProgressFirstMention, LastMention: time.Now().UTC()},
		},
	})
	require.NoError(t, err)

	got, err = s.Summaries().Get(ctx, u.UserID)
	require.NoError(t, err)
	require.Len(t, got.GrowthTimelines, 2)
	assert.Equal(t, 2, got.GrowthTimelines[0].Mentions)
}
