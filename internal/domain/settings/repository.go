package settings

import "context"

// Repository defines operations for UserSettings.
type Repository interface {
	GetByOwner(ctx context.Context, ownerID string) (*UserSettings, error)
	Create(ctx context.Context, s *UserSettings) error
	Update(ctx context.Context, s *UserSettings) error
}
