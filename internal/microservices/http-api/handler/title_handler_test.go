package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"coanime/internal/microservices/http-api/dto"
	"coanime/internal/microservices/http-api/handler"
	"coanime/internal/microservices/http-api/service"
)

// --- MOCK SERVICE ---

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, page, pageSize int, query string) ([]dto.TitleResponse, int64, error) {
	args := m.Called(ctx, page, pageSize, query)
	return args.Get(0).([]dto.TitleResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleService) Get(ctx context.Context, id uint) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, id uint, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTitleService) Enrich(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// --- SETUP ---

func mockAuthMiddleware(role string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("subject", "admin")
		c.Set("role", role)
		c.Set("scopes", scopes)
		c.Next()
	}
}

func setupTitleRouter(svc *MockTitleService, role string, scopes ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api/titles")
	rg.Use(mockAuthMiddleware(role, scopes...))
	handler.NewTitleHandler(svc).RegisterRoutes(rg)
	return r
}

var allScopes = service.AdminScopes

// --- TESTS ---

func TestTitleHandler_List(t *testing.T) {
	svc := new(MockTitleService)
	r := setupTitleRouter(svc, "admin", allScopes...)

	list := []dto.TitleResponse{{ID: 1, Name: "Mushishi"}, {ID: 2, Name: "Monster"}}

	t.Run("Success", func(t *testing.T) {
		svc.On("List", mock.Anything, 2, 10, "mon").Return(list, int64(25), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/titles?page=2&page_size=10&q=mon", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response["data"].([]interface{}), 2)
		pagination := response["pagination"].(map[string]interface{})
		assert.Equal(t, float64(3), pagination["total_pages"])
	})

	t.Run("InvalidPageFallsBackToDefaults", func(t *testing.T) {
		svc.On("List", mock.Anything, 1, 20, "").Return([]dto.TitleResponse{}, int64(0), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/titles?page=-1&page_size=500", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	svc.AssertExpectations(t)
}

func TestTitleHandler_Get(t *testing.T) {
	svc := new(MockTitleService)
	r := setupTitleRouter(svc, "admin", allScopes...)

	t.Run("Found", func(t *testing.T) {
		svc.On("Get", mock.Anything, uint(5)).Return(&dto.TitleResponse{ID: 5, Name: "Mushishi"}, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/titles/5", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Mushishi")
	})

	t.Run("NotFound", func(t *testing.T) {
		svc.On("Get", mock.Anything, uint(6)).Return(nil, service.ErrTitleNotFound).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/titles/6", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/titles/abc", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTitleHandler_Create(t *testing.T) {
	svc := new(MockTitleService)
	r := setupTitleRouter(svc, "admin", allScopes...)

	t.Run("Success", func(t *testing.T) {
		in := dto.CreateTitleDTO{Name: "Mushishi", TypeID: 1}
		svc.On("Create", mock.Anything, in).Return(&dto.TitleResponse{ID: 9, Name: "Mushishi", Slug: "mushishi"}, nil).Once()

		body, _ := json.Marshal(in)
		req, _ := http.NewRequest(http.MethodPost, "/api/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"slug":"mushishi"`)
	})

	t.Run("MissingName", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/titles", bytes.NewBufferString(`{"type_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Conflict", func(t *testing.T) {
		in := dto.CreateTitleDTO{Name: "Monster", TypeID: 1}
		svc.On("Create", mock.Anything, in).Return(nil, service.ErrTitleConflict).Once()

		body, _ := json.Marshal(in)
		req, _ := http.NewRequest(http.MethodPost, "/api/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestTitleHandler_RequiresAdmin(t *testing.T) {
	svc := new(MockTitleService)
	r := setupTitleRouter(svc, "viewer", allScopes...)

	req, _ := http.NewRequest(http.MethodDelete, "/api/titles/3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTitleHandler_RequiresScope(t *testing.T) {
	svc := new(MockTitleService)
	r := setupTitleRouter(svc, "admin", "read:titles")

	req, _ := http.NewRequest(http.MethodPut, "/api/titles/3", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTitleHandler_UpdateDeleteEnrich(t *testing.T) {
	svc := new(MockTitleService)
	r := setupTitleRouter(svc, "admin", allScopes...)

	sinopsis := "Una historia."
	svc.On("Update", mock.Anything, uint(3), dto.UpdateTitleDTO{Sinopsis: &sinopsis}).
		Return(&dto.TitleResponse{ID: 3, Sinopsis: sinopsis}, nil).Once()
	svc.On("Delete", mock.Anything, uint(3)).Return(nil).Once()
	svc.On("Enrich", mock.Anything, uint(3)).Return(true, nil).Once()

	req, _ := http.NewRequest(http.MethodPut, "/api/titles/3", bytes.NewBufferString(`{"sinopsis":"Una historia."}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodPost, "/api/titles/3/enrich", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"title_id":3,"queued":true}`, w.Body.String())

	req, _ = http.NewRequest(http.MethodDelete, "/api/titles/3", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.AssertExpectations(t)
}
