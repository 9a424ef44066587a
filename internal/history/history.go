// Package history compresses a user's recent entries into the compact
// context fed to the analyzer prompt, and maintains the persisted per-user
// summary rollup.
package history

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tendjournal/tend/internal/growth"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

const DefaultDepth = 5

// AreaProgress is one area/indicator pair from a past entry.
type AreaProgress struct {
	Area      string
	Indicator model.Progress
}

// EntrySnapshot is the compressed form of one past entry.
type EntrySnapshot struct {
	Date      string // 2006-01-02
	Areas     []string
	Sentiment model.Sentiment
	Progress  []AreaProgress
}

// Context is what the analyzer sees of the user's past. Recent is newest
// first, matching store list order.
type Context struct {
	TotalEntries int
	Recent       []EntrySnapshot
}

// Builder reads entry history and writes summary rollups.
type Builder struct {
	store store.Store
	log   zerolog.Logger
}

func NewBuilder(s store.Store, log zerolog.Logger) *Builder {
	return &Builder{store: s, log: log}
}

// Context loads the most recent limit entries and compresses them.
// Entries without a growth note are skipped.
func (b *Builder) Context(ctx context.Context, userID string, limit int) (*Context, error) {
	if limit <= 0 {
		limit = DefaultDepth
	}
	entries, err := b.store.Entries().List(ctx, model.ListEntriesRequest{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}
	total, err := b.store.Entries().Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &Context{TotalEntries: total}
	for _, e := range entries {
		if e.GrowthNote == nil {
			continue
		}
		snap := EntrySnapshot{
			Date:      e.CreationTime.Format("2006-01-02"),
			Sentiment: e.GrowthNote.OverallSentiment,
		}
		for _, d := range e.GrowthNote.DetectedAreas {
			snap.Areas = append(snap.Areas, d.AreaName)
			snap.Progress = append(snap.Progress, AreaProgress{Area: d.AreaName, Indicator: d.ProgressIndicator})
		}
		out.Recent = append(out.Recent, snap)
	}
	return out, nil
}

// UpdateSummary recomputes the per-area rollup from all entries and
// upserts it. Callers treat failures as non-fatal.
func (b *Builder) UpdateSummary(ctx context.Context, userID string) error {
	entries, err := b.store.Entries().ListAllAsc(ctx, userID)
	if err != nil {
		return err
	}
	_, err = b.store.Summaries().Upsert(ctx, &model.MemorySummary{
		UserID:          userID,
		GrowthTimelines: growth.Rollup(entries),
	})
	return err
}
