package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/flori92/floservice-messaging/internal/fault"
	"github.com/flori92/floservice-messaging/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore abstracts conversation persistence. One concrete adapter
// per backing service; application code depends only on this interface.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, currentUserID, counterpartID string) (models.Conversation, error)
	Get(ctx context.Context, conversationID int64) (models.Conversation, error)
	List(ctx context.Context, userID string) ([]models.ConversationSummary, error)
	Touch(ctx context.Context, conversationID int64, preview string, at time.Time) error
}

// ConversationRepo is the sqlx implementation of ConversationStore.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreate resolves the pair to a durable conversation, creating one on
// first contact. Idempotent: repeated calls with the same pair return the same
// row. The counterpart may be an externally sourced identity not yet mirrored
// into profiles; it is then recorded in external_counterpart_id as well.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, currentUserID, counterpartID string) (models.Conversation, error) {
	if currentUserID == counterpartID {
		return models.Conversation{}, fault.Validation("cannot start a conversation with yourself")
	}

	participants := []string{currentUserID, counterpartID}
	sort.Strings(participants)
	a, b := participants[0], participants[1]

	var conv models.Conversation
	query := `SELECT id, participant_a, participant_b, initiator_id, external_counterpart_id,
        last_message, last_message_at, created_at, updated_at
        FROM conversations WHERE participant_a=$1 AND participant_b=$2`
	err := r.db.GetContext(ctx, &conv, query, a, b)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, fault.FromPG("find conversation", err)
	}

	external := sql.NullString{}
	mirrored, err := r.isMirrored(ctx, counterpartID)
	if err != nil {
		return models.Conversation{}, err
	}
	if !mirrored {
		external = sql.NullString{String: counterpartID, Valid: true}
	}

	// ON CONFLICT DO NOTHING plus re-select keeps concurrent first contacts
	// converging on a single row.
	insert := `INSERT INTO conversations (participant_a, participant_b, initiator_id, external_counterpart_id)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (participant_a, participant_b) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, a, b, currentUserID, external); err != nil {
		return models.Conversation{}, fault.FromPG("create conversation", err)
	}

	if err := r.db.GetContext(ctx, &conv, query, a, b); err != nil {
		return models.Conversation{}, fault.FromPG("reload conversation", err)
	}
	return conv, nil
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, conversationID int64) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, participant_a, participant_b, initiator_id,
        external_counterpart_id, last_message, last_message_at, created_at, updated_at
        FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return models.Conversation{}, fault.FromPG("get conversation", err)
	}
	return conv, nil
}

// List returns the user's conversations ordered by last activity descending,
// each with counterpart display data and unread count. A missing schema yields
// an empty list, not an error: callers degrade to a disabled directory.
func (r *ConversationRepo) List(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	query := `SELECT c.id, c.participant_a, c.participant_b, c.initiator_id, c.external_counterpart_id,
        c.last_message, c.last_message_at, c.created_at, c.updated_at
        FROM conversations c
        WHERE c.participant_a=$1 OR c.participant_b=$1
        ORDER BY COALESCE(c.last_message_at, c.created_at) DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		if fault.IsNotAvailable(fault.FromPG("list conversations", err)) {
			return []models.ConversationSummary{}, nil
		}
		return nil, fault.FromPG("list conversations", err)
	}
	defer rows.Close()

	summaries := []models.ConversationSummary{}
	for rows.Next() {
		var conv models.Conversation
		if err := rows.StructScan(&conv); err != nil {
			return nil, fault.Unknown("scan conversation", err)
		}

		summary := models.ConversationSummary{
			ConversationID: conv.ID,
			CounterpartID:  conv.Counterpart(userID),
			LastMessage:    conv.LastMessage,
		}
		if conv.LastMessageAt.Valid {
			at := conv.LastMessageAt.Time
			summary.LastMessageAt = &at
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Unknown("iterate conversations", err)
	}

	if err := r.fillCounterparts(ctx, summaries); err != nil {
		return nil, err
	}
	if err := r.fillUnreadCounts(ctx, userID, summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Touch maintains the denormalized last-message columns for list rendering.
func (r *ConversationRepo) Touch(ctx context.Context, conversationID int64, preview string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversations
        SET last_message=$2, last_message_at=$3, updated_at=NOW() WHERE id=$1`,
		conversationID, preview, at)
	return fault.FromPG("touch conversation", err)
}

func (r *ConversationRepo) isMirrored(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id=$1)`, userID)
	if err != nil {
		wrapped := fault.FromPG("check profile", err)
		if fault.IsNotAvailable(wrapped) {
			return false, nil
		}
		return false, wrapped
	}
	return exists, nil
}

func (r *ConversationRepo) fillCounterparts(ctx context.Context, summaries []models.ConversationSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.CounterpartID)
	}

	query, args, err := sqlx.In(`SELECT user_id, display_name, avatar_url, online, last_seen
        FROM profiles WHERE user_id IN (?)`, ids)
	if err != nil {
		return fault.Unknown("build profile query", err)
	}
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, r.db.Rebind(query), args...); err != nil {
		wrapped := fault.FromPG("load counterpart profiles", err)
		if fault.IsNotAvailable(wrapped) {
			return nil
		}
		return wrapped
	}

	byID := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	for i := range summaries {
		if p, ok := byID[summaries[i].CounterpartID]; ok {
			summaries[i].CounterpartName = p.DisplayName
			summaries[i].CounterpartAvatar = p.AvatarURL
		}
	}
	return nil
}

func (r *ConversationRepo) fillUnreadCounts(ctx context.Context, userID string, summaries []models.ConversationSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	type unreadRow struct {
		ConversationID int64 `db:"conversation_id"`
		Count          int   `db:"count"`
	}
	var rows []unreadRow
	err := r.db.SelectContext(ctx, &rows, `SELECT conversation_id, COUNT(*) AS count
        FROM messages WHERE recipient_id=$1 AND read=FALSE
        GROUP BY conversation_id`, userID)
	if err != nil {
		wrapped := fault.FromPG("count unread", err)
		if fault.IsNotAvailable(wrapped) {
			return nil
		}
		return wrapped
	}

	byConversation := make(map[int64]int, len(rows))
	for _, row := range rows {
		byConversation[row.ConversationID] = row.Count
	}
	for i := range summaries {
		summaries[i].UnreadCount = byConversation[summaries[i].ConversationID]
	}
	return nil
}
