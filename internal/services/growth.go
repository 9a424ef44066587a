package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tendjournal/tend/internal/growth"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// GrowthService serves timeline and summary aggregations. Both read the
// raw entries so every store driver yields identical numbers.
type GrowthService struct {
	store store.Store
	log   zerolog.Logger
}

func NewGrowthService(s store.Store, log zerolog.Logger) *GrowthService {
	return &GrowthService{store: s, log: log}
}

// Timeline builds the chronological view of one growth area.
func (s *GrowthService) Timeline(ctx context.Context, userID, areaName string) (*model.AreaTimeline, error) {
	entries, err := s.store.Entries().ListAllAsc(ctx, userID)
	if err != nil {
		return nil, err
	}
	return growth.Timeline(areaName, entries), nil
}

// Summary aggregates all areas across the user's entries and returns the
// user's total entry count alongside the rows.
func (s *GrowthService) Summary(ctx context.Context, userID string) ([]model.AreaSummary, int, error) {
	entries, err := s.store.Entries().ListAllAsc(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Entries().Count(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return growth.Summarize(entries), total, nil
}

// Memory returns the persisted rollup maintained on the entry write path.
// A user with no rollup yet gets an empty one rather than a not-found error.
func (s *GrowthService) Memory(ctx context.Context, userID string) (*model.MemorySummary, error) {
	sum, err := s.store.Summaries().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return &model.MemorySummary{UserID: userID, GrowthTimelines: []model.AreaRollup{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return sum, nil
}
