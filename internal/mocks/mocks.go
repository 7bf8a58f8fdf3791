package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/flori92/floservice-messaging/internal/models"
)

type ConversationStoreMock struct {
	mock.Mock
}

func (m *ConversationStoreMock) GetOrCreate(ctx context.Context, currentUserID, counterpartID string) (models.Conversation, error) {
	args := m.Called(ctx, currentUserID, counterpartID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationStoreMock) Get(ctx context.Context, conversationID int64) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationStoreMock) List(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ConversationSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationSummary)
	}
	return list, args.Error(1)
}

func (m *ConversationStoreMock) Touch(ctx context.Context, conversationID int64, preview string, at time.Time) error {
	args := m.Called(ctx, conversationID, preview, at)
	return args.Error(0)
}

type MessageStoreMock struct {
	mock.Mock
}

func (m *MessageStoreMock) Create(ctx context.Context, conversationID int64, senderID, recipientID string, kind models.MessageKind, content string, fileName string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, recipientID, kind, content, fileName)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageStoreMock) List(ctx context.Context, conversationID int64, page, pageSize int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, page, pageSize)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageStoreMock) MarkRead(ctx context.Context, conversationID int64, userID string) (int64, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageStoreMock) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type ProfileStoreMock struct {
	mock.Mock
}

func (m *ProfileStoreMock) Get(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileStoreMock) Upsert(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProfileStoreMock) SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error {
	args := m.Called(ctx, userID, online, lastSeen)
	return args.Error(0)
}

type ObjectStoreMock struct {
	mock.Mock
}

func (m *ObjectStoreMock) Put(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, folder, name, data, contentType)
	return args.String(0), args.Error(1)
}
