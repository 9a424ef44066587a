package store

import (
	"context"

	"github.com/tendjournal/tend/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Users() Users
	GrowthAreas() GrowthAreas
	Entries() Entries
	Summaries() Summaries
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Delete(ctx context.Context, userID string) error
}

type GrowthAreas interface {
	Create(ctx context.Context, a *model.GrowthArea) (*model.GrowthArea, error)
	Get(ctx context.Context, userID, areaID string) (*model.GrowthArea, error)
	// List returns the user's areas in creation order. When activeOnly is
	// set, deactivated areas are excluded.
	List(ctx context.Context, userID string, activeOnly bool) ([]*model.GrowthArea, error)
	Update(ctx context.Context, a *model.GrowthArea) (*model.GrowthArea, error)
	// Replace swaps the user's whole area list for the given one.
	Replace(ctx context.Context, userID string, areas []*model.GrowthArea) ([]*model.GrowthArea, error)
	Delete(ctx context.Context, userID, areaID string) error
}

type Entries interface {
	Create(ctx context.Context, e *model.JournalEntry) (*model.JournalEntry, error)
	GetByID(ctx context.Context, userID, entryID string) (*model.JournalEntry, error)
	// List returns entries newest-first with limit/offset paging.
	List(ctx context.Context, req model.ListEntriesRequest) ([]*model.JournalEntry, error)
	// ListAllAsc returns all of a user's entries in ascending creation order,
	// the ordering the growth aggregator depends on.
	ListAllAsc(ctx context.Context, userID string) ([]*model.JournalEntry, error)
	Count(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, entryID string) error
}

type Summaries interface {
	Upsert(ctx context.Context, s *model.MemorySummary) (*model.MemorySummary, error)
	Get(ctx context.Context, userID string) (*model.MemorySummary, error)
}
