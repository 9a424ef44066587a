package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// AreaService manages a user's growth area list.
type AreaService struct {
	store store.Store
	log   zerolog.Logger
}

func NewAreaService(s store.Store, log zerolog.Logger) *AreaService {
	return &AreaService{store: s, log: log}
}

func (s *AreaService) List(ctx context.Context, userID string) ([]*model.GrowthArea, error) {
	return s.store.GrowthAreas().List(ctx, userID, false)
}

// Replace swaps the user's whole area list, matching the client contract
// where the settings screen posts all areas at once.
func (s *AreaService) Replace(ctx context.Context, userID string, areas []*model.GrowthArea) ([]*model.GrowthArea, error) {
	return s.store.GrowthAreas().Replace(ctx, userID, areas)
}

func (s *AreaService) Update(ctx context.Context, a *model.GrowthArea) (*model.GrowthArea, error) {
	return s.store.GrowthAreas().Update(ctx, a)
}

func (s *AreaService) Delete(ctx context.Context, userID, areaID string) error {
	return s.store.GrowthAreas().Delete(ctx, userID, areaID)
}
