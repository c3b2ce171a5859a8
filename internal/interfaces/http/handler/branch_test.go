package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/studyhub/backend/internal/application/catalog"
	"github.com/studyhub/backend/internal/domain/catalog"
	"github.com/studyhub/backend/internal/domain/shared"
)

type mockBranchRepository struct {
	mock.Mock
}

func (m *mockBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Branch), args.Error(1)
}

func (m *mockBranchRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Branch, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Branch), args.Error(1)
}

func (m *mockBranchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Branch, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Branch), args.Error(1)
}

func (m *mockBranchRepository) Save(ctx context.Context, branch *catalog.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *mockBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBranchRepository) ExistsByShortName(ctx context.Context, shortName string) (bool, error) {
	args := m.Called(ctx, shortName)
	return args.Bool(0), args.Error(1)
}

func (m *mockBranchRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockBranchRepository) HasSubjects(ctx context.Context, branchID uuid.UUID) (bool, error) {
	args := m.Called(ctx, branchID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBranchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newBranchRouter(repo *mockBranchRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBranchHandler(catalogapp.NewBranchService(repo))

	router := gin.New()
	router.GET("/branches", h.List)
	router.GET("/branches/:branch", h.Get)
	router.POST("/branches", h.Create)
	router.DELETE("/branches/:id", h.Delete)
	return router
}

func newTestBranch(t *testing.T, name, shortName string) *catalog.Branch {
	t.Helper()
	branch, err := catalog.NewBranch(name, shortName)
	require.NoError(t, err)
	return branch
}

func TestBranchHandlerList(t *testing.T) {
	repo := new(mockBranchRepository)
	router := newBranchRouter(repo)

	repo.On("FindAll", mock.Anything, shared.Filter{}).Return([]catalog.Branch{
		*newTestBranch(t, "Computer Science", "CSE"),
		*newTestBranch(t, "Mechanical Engineering", "ME"),
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/branches", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "computer-science")
	assert.Contains(t, w.Body.String(), "mechanical-engineering")
}

func TestBranchHandlerGet(t *testing.T) {
	t.Run("resolves by slug", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)
		branch := newTestBranch(t, "Computer Science", "CSE")
		repo.On("FindBySlug", mock.Anything, "computer-science").Return(branch, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/branches/computer-science", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), branch.ID.String())
	})

	t.Run("unknown slug returns 404", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)
		repo.On("FindBySlug", mock.Anything, "nope").Return(nil, shared.ErrNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/branches/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})
}

func TestBranchHandlerCreate(t *testing.T) {
	t.Run("creates a branch", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)
		repo.On("ExistsByShortName", mock.Anything, "CSE").Return(false, nil)
		repo.On("ExistsBySlug", mock.Anything, "computer-science").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Branch")).Return(nil)

		body := `{"name":"Computer Science","short_name":"CSE"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "computer-science")
		repo.AssertExpectations(t)
	})

	t.Run("duplicate short name returns 409", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)
		repo.On("ExistsByShortName", mock.Anything, "CSE").Return(true, nil)

		body := `{"name":"Computer Science","short_name":"CSE"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/branches", strings.NewReader(`{"name":"X"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBranchHandlerDelete(t *testing.T) {
	t.Run("deletes an unreferenced branch", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)
		branch := newTestBranch(t, "Computer Science", "CSE")
		repo.On("FindByID", mock.Anything, branch.ID).Return(branch, nil)
		repo.On("HasSubjects", mock.Anything, branch.ID).Return(false, nil)
		repo.On("Delete", mock.Anything, branch.ID).Return(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/branches/"+branch.ID.String(), nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("referenced branch returns 409", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)
		branch := newTestBranch(t, "Computer Science", "CSE")
		repo.On("FindByID", mock.Anything, branch.ID).Return(branch, nil)
		repo.On("HasSubjects", mock.Anything, branch.ID).Return(true, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/branches/"+branch.ID.String(), nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		repo := new(mockBranchRepository)
		router := newBranchRouter(repo)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/branches/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
