package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"subscription_tracker/internal/domain/identity"
)

// userMetadata is the subset of the provider's raw_user_meta_data we read.
type userMetadata struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// PostgresIdentityResolver looks owners up in the identity provider's auth.users table,
// which lives in the same PostgreSQL database as the application schema.
type PostgresIdentityResolver struct {
	db *sql.DB
}

func NewPostgresIdentityResolver(db *sql.DB) *PostgresIdentityResolver {
	return &PostgresIdentityResolver{db: db}
}

func (r *PostgresIdentityResolver) Resolve(ctx context.Context, ownerID string) (*identity.Identity, error) {
	var (
		email    sql.NullString
		metadata []byte
	)
	query := `SELECT email, raw_user_meta_data FROM auth.users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&email, &metadata)
	if err != nil {
		if err == sql.ErrNoRows || hasPQCode(err, pgInvalidTextFormat) {
			return nil, identity.ErrNotFound
		}
		return nil, fmt.Errorf("error looking up user %s: %w", ownerID, err)
	}
	if !email.Valid || email.String == "" {
		return nil, fmt.Errorf("user %s has no email address: %w", ownerID, identity.ErrNotFound)
	}

	var meta userMetadata
	if len(metadata) > 0 {
		// Unreadable metadata only costs us the display name.
		_ = json.Unmarshal(metadata, &meta)
	}

	return &identity.Identity{
		OwnerID:     ownerID,
		Email:       email.String,
		DisplayName: identity.DisplayName(email.String, meta.Name, meta.FullName),
	}, nil
}
