package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/mocks"
	"github.com/flori92/floservice-messaging/internal/models"
	"github.com/flori92/floservice-messaging/internal/repositories"
)

func setupProfileRouter(handler *ProfileHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/profiles/sync", handler.Sync)
	r.GET("/profiles/:user_id", handler.Get)
	return r
}

func TestProfileSyncUpserts(t *testing.T) {
	profileRepo := new(mocks.ProfileStoreMock)
	handler := NewProfileHandler(profileRepo, zap.NewNop())
	router := setupProfileRouter(handler)

	profileRepo.On("Upsert", mock.Anything, models.Profile{
		UserID: "tg-2", DisplayName: "Alice", AvatarURL: "https://cdn.example.com/a.png",
	}).Return(nil).Once()

	body := bytes.NewBufferString(`{"user_id":"tg-2","display_name":"Alice","avatar_url":"https://cdn.example.com/a.png"}`)
	req := httptest.NewRequest(http.MethodPost, "/profiles/sync", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestProfileSyncMissingUserID(t *testing.T) {
	handler := NewProfileHandler(new(mocks.ProfileStoreMock), zap.NewNop())
	router := setupProfileRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/profiles/sync", bytes.NewBufferString(`{"display_name":"Alice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileGetNotFound(t *testing.T) {
	profileRepo := new(mocks.ProfileStoreMock)
	handler := NewProfileHandler(profileRepo, zap.NewNop())
	router := setupProfileRouter(handler)

	profileRepo.On("Get", mock.Anything, "tg-9").Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/profiles/tg-9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestProfileGetSuccess(t *testing.T) {
	profileRepo := new(mocks.ProfileStoreMock)
	handler := NewProfileHandler(profileRepo, zap.NewNop())
	router := setupProfileRouter(handler)

	profileRepo.On("Get", mock.Anything, "tg-2").Return(models.Profile{UserID: "tg-2", DisplayName: "Alice"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/profiles/tg-2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestPresenceLookupRejectsMalformedID(t *testing.T) {
	handler := NewPresenceHandler(nil, testValidator(), zap.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/presence/:user_id", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/presence/not@valid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
