package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/flori92/floservice-messaging/internal/fault"
	"github.com/flori92/floservice-messaging/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageStore abstracts message persistence.
type MessageStore interface {
	Create(ctx context.Context, conversationID int64, senderID, recipientID string, kind models.MessageKind, content string, fileName string) (models.Message, error)
	List(ctx context.Context, conversationID int64, page, pageSize int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID int64, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// MessageRepo is the sqlx implementation of MessageStore.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create appends a message to a conversation. Identifier validation happens at
// the boundary before this is reached.
func (r *MessageRepo) Create(ctx context.Context, conversationID int64, senderID, recipientID string, kind models.MessageKind, content string, fileName string) (models.Message, error) {
	if !kind.Valid() {
		return models.Message{}, fault.Validation("unknown message kind")
	}

	name := sql.NullString{}
	if fileName != "" {
		name = sql.NullString{String: fileName, Valid: true}
	}

	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages
        (conversation_id, sender_id, recipient_id, kind, content, file_name)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, conversation_id, sender_id, recipient_id, kind, content, file_name, read, created_at`,
		conversationID, senderID, recipientID, kind, content, name).
		Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.RecipientID, &msg.Kind,
			&msg.Content, &msg.FileName, &msg.Read, &msg.CreatedAt)
	if err != nil {
		return models.Message{}, fault.FromPG("create message", err)
	}
	return msg, nil
}

// List returns one page of messages in oldest-first display order. The store
// is queried newest-first for offset pagination and the page is reversed here.
func (r *MessageRepo) List(ctx context.Context, conversationID int64, page, pageSize int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, conversation_id, sender_id, recipient_id,
        kind, content, file_name, read, created_at
        FROM messages WHERE conversation_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`, conversationID, pageSize, offset)
	if err != nil {
		wrapped := fault.FromPG("list messages", err)
		if fault.IsNotAvailable(wrapped) {
			return []models.Message{}, nil
		}
		return nil, wrapped
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// MarkRead transitions read=false to true for all messages addressed to userID
// in the conversation. A no-op when nothing matches; calling it twice leaves
// the same final state.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID int64, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read=TRUE
        WHERE conversation_id=$1 AND recipient_id=$2 AND read=FALSE`, conversationID, userID)
	if err != nil {
		wrapped := fault.FromPG("mark read", err)
		if fault.IsNotAvailable(wrapped) {
			return 0, nil
		}
		return 0, wrapped
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fault.Unknown("mark read result", err)
	}
	return count, nil
}

// CountUnread is the query-time aggregate backing the badge indicator.
func (r *MessageRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages
        WHERE recipient_id=$1 AND read=FALSE`, userID)
	if err != nil {
		wrapped := fault.FromPG("count unread", err)
		if fault.IsNotAvailable(wrapped) {
			return 0, nil
		}
		return 0, wrapped
	}
	return count, nil
}
