package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/fault"
	"github.com/flori92/floservice-messaging/internal/identity"
	"github.com/flori92/floservice-messaging/internal/mocks"
	"github.com/flori92/floservice-messaging/internal/models"
)

func setupConversationRouter(handler *ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "tg-1")
		c.Next()
	})
	r.GET("/conversations", handler.List)
	r.POST("/conversations/start", handler.Start)
	return r
}

func testValidator() identity.Validator {
	return identity.Validator{AllowSynthetic: true}
}

func TestListConversationsSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationStoreMock)
	handler := NewConversationHandler(convRepo, testValidator(), nil, zap.NewNop())
	router := setupConversationRouter(handler)

	convRepo.On("List", mock.Anything, "tg-1").Return([]models.ConversationSummary{
		{ConversationID: 3, CounterpartID: "tg-2", CounterpartName: "Alice"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.ConversationSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["conversations"], 1)
	require.Equal(t, "tg-2", resp["conversations"][0].CounterpartID)

	convRepo.AssertExpectations(t)
}

func TestListConversationsRepoError(t *testing.T) {
	convRepo := new(mocks.ConversationStoreMock)
	handler := NewConversationHandler(convRepo, testValidator(), nil, zap.NewNop())
	router := setupConversationRouter(handler)

	convRepo.On("List", mock.Anything, "tg-1").Return(([]models.ConversationSummary)(nil), fault.Unknown("scan failed", nil)).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestStartConversationSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationStoreMock)
	handler := NewConversationHandler(convRepo, testValidator(), nil, zap.NewNop())
	router := setupConversationRouter(handler)

	convRepo.On("GetOrCreate", mock.Anything, "tg-1", "tg-2").Return(models.Conversation{ID: 10, ParticipantA: "tg-1", ParticipantB: "tg-2"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/start", bytes.NewBufferString(`{"counterpart_id":"tg-2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, int64(10), resp["conversation_id"])

	convRepo.AssertExpectations(t)
}

func TestStartConversationRejectsMalformedCounterpart(t *testing.T) {
	convRepo := new(mocks.ConversationStoreMock)
	handler := NewConversationHandler(convRepo, testValidator(), nil, zap.NewNop())
	router := setupConversationRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/conversations/start", bytes.NewBufferString(`{"counterpart_id":"<script>alert(1)</script>"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	convRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartConversationMissingBody(t *testing.T) {
	handler := NewConversationHandler(new(mocks.ConversationStoreMock), testValidator(), nil, zap.NewNop())
	router := setupConversationRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/conversations/start", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartConversationDegradedSchema(t *testing.T) {
	convRepo := new(mocks.ConversationStoreMock)
	handler := NewConversationHandler(convRepo, testValidator(), nil, zap.NewNop())
	router := setupConversationRouter(handler)

	convRepo.On("GetOrCreate", mock.Anything, "tg-1", "tg-2").Return(models.Conversation{}, fault.NotAvailable("relation missing", nil)).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations/start", bytes.NewBufferString(`{"counterpart_id":"tg-2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	convRepo.AssertExpectations(t)
}
