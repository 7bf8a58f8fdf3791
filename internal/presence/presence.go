package presence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/fault"
	"github.com/flori92/floservice-messaging/internal/models"
	"github.com/flori92/floservice-messaging/internal/repositories"
)

const keyPrefix = "presence:"

// Tracker records per-user online flags and last-seen timestamps. Redis is the
// fast path; the profile row keeps the durable copy. Writes happen only on the
// session manager's explicit open/close transitions, never on a timer.
type Tracker struct {
	redis    *redis.Client
	profiles repositories.ProfileStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewTracker constructs a Tracker. profiles may be nil in client-only setups.
func NewTracker(client *redis.Client, profiles repositories.ProfileStore, logger *zap.Logger) *Tracker {
	return &Tracker{redis: client, profiles: profiles, logger: logger, now: time.Now}
}

// SetOnline writes the online flag and refreshes last-seen to now.
func (t *Tracker) SetOnline(ctx context.Context, userID string, online bool) error {
	now := t.now().UTC()

	err := t.redis.HSet(ctx, keyPrefix+userID,
		"online", strconv.FormatBool(online),
		"last_seen", now.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fault.Unknown("write presence", err)
	}

	if t.profiles != nil {
		if err := t.profiles.SetPresence(ctx, userID, online, now); err != nil {
			// The durable copy is best effort; the fast path already landed.
			t.logger.Warn("profile presence write failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// Get returns the presence record for a user. An absent key means the user was
// never seen: offline with a zero last-seen.
func (t *Tracker) Get(ctx context.Context, userID string) (models.Presence, error) {
	fields, err := t.redis.HGetAll(ctx, keyPrefix+userID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Presence{}, fault.Unknown("read presence", err)
	}

	p := models.Presence{UserID: userID}
	if v, ok := fields["online"]; ok {
		p.Online, _ = strconv.ParseBool(v)
	}
	if v, ok := fields["last_seen"]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			p.LastSeen = ts
		}
	}
	return p, nil
}
