package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"coanime/internal/microservices/http-api/handler"
	"coanime/internal/microservices/http-api/models"
)

type MockVocabulary struct {
	mock.Mock
}

func (m *MockVocabulary) Genres(ctx context.Context) ([]models.Genre, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockVocabulary) Types(ctx context.Context) ([]models.TitleType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TitleType), args.Error(1)
}

func setupVocabularyRouter(repo *MockVocabulary) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api")
	rg.Use(mockAuthMiddleware("admin", "read:titles"))
	handler.NewVocabularyHandler(repo).RegisterRoutes(rg)
	return r
}

func TestVocabularyHandler(t *testing.T) {
	repo := new(MockVocabulary)
	r := setupVocabularyRouter(repo)

	repo.On("Genres", mock.Anything).Return([]models.Genre{{ID: 1, Name: "Acción", Slug: "accion"}}, nil).Once()
	repo.On("Types", mock.Anything).Return([]models.TitleType(nil), errors.New("db down")).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/genres", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"accion"`)

	req, _ = http.NewRequest(http.MethodGet, "/api/types", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	repo.AssertExpectations(t)
}
