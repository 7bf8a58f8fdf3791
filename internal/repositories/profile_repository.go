package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/flori92/floservice-messaging/internal/fault"
	"github.com/flori92/floservice-messaging/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore abstracts the mirrored user directory.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) error
	SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error
}

// ProfileRepo is the sqlx implementation of ProfileStore.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get fetches a mirrored profile.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT user_id, display_name, avatar_url, online, last_seen
        FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, fault.FromPG("get profile", err)
	}
	return profile, nil
}

// Upsert mirrors an externally sourced identity into the local directory.
func (r *ProfileRepo) Upsert(ctx context.Context, profile models.Profile) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (user_id, display_name, avatar_url)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET display_name=EXCLUDED.display_name, avatar_url=EXCLUDED.avatar_url`,
		profile.UserID, profile.DisplayName, profile.AvatarURL)
	return fault.FromPG("upsert profile", err)
}

// SetPresence writes the durable copy of the presence record on the profile
// row. Missing schema is swallowed: presence then lives only in Redis.
func (r *ProfileRepo) SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE profiles SET online=$2, last_seen=$3 WHERE user_id=$1`,
		userID, online, lastSeen)
	if err != nil {
		wrapped := fault.FromPG("set profile presence", err)
		if fault.IsNotAvailable(wrapped) {
			return nil
		}
		return wrapped
	}
	return nil
}
