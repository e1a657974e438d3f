package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ravebox/discover/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLists struct {
	mock.Mock
}

func (m *mockLists) ListReviewLists(context.Context) ([]domain.ReviewList, error) {
	args := m.Called()
	lists, _ := args.Get(0).([]domain.ReviewList)
	return lists, args.Error(1)
}

func (m *mockLists) GetReviewList(_ context.Context, id string) (domain.ReviewList, error) {
	args := m.Called(id)
	list, _ := args.Get(0).(domain.ReviewList)
	return list, args.Error(1)
}

var categories = []domain.Category{
	{Key: "technology", Label: "Technology", Children: []domain.Category{{Key: "phones"}, {Key: "laptops"}}},
	{Key: "other", Label: "Other"},
}

func setup(t *testing.T) (*gin.Engine, *mockLists) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	lists := new(mockLists)
	return NewRouter(&Handlers{Lists: lists, Ontology: categories}, "/api/"), lists
}

func get(router http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUserStatisticsStub(t *testing.T) {
	router, _ := setup(t)

	rec := get(router, "/api/statistics/user", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"ok": true}, decode(t, rec))
}

func TestRequestID(t *testing.T) {
	router, _ := setup(t)

	rec := get(router, "/api/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	rec = get(router, "/api/ping", http.Header{requestIDHeader: {"abc"}})
	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))

	rec = get(router, "/api/ping", http.Header{"x-request-id": {"def"}})
	assert.Equal(t, "def", rec.Header().Get(requestIDHeader))
}

func TestCategories(t *testing.T) {
	router, _ := setup(t)

	rec := get(router, "/api/categories", nil)
	assert.Equal(t, map[string]any{"categories": []any{"technology", "other"}}, decode(t, rec))

	rec = get(router, "/api/categories/technology", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"phones", "laptops"}, decode(t, rec)["queries"])

	// leaf categories are not browsable
	rec = get(router, "/api/categories/other", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewLists(t *testing.T) {
	router, lists := setup(t)
	reviews := make([]domain.Review, 1200)
	lists.On("ListReviewLists").Return([]domain.ReviewList{
		{ID: "phones", Title: "Phones", URL: "/discover/phones", Reviews: reviews},
	}, nil).Once()

	rec := get(router, "/api/discover/lists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{
		"lists": []any{map[string]any{"id": "phones", "title": "Phones", "url": "/discover/phones", "reviews": "1,200"}},
	}, decode(t, rec))

	lists.On("ListReviewLists").Return(nil, errors.New("db down")).Once()
	rec = get(router, "/api/discover/lists", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReviewList(t *testing.T) {
	router, lists := setup(t)
	lists.On("GetReviewList", "phones").Return(domain.ReviewList{ID: "phones", Title: "Phones"}, nil)
	lists.On("GetReviewList", "missing").Return(domain.ReviewList{}, domain.ErrNotFound)

	rec := get(router, "/api/discover/lists/phones", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["list"].(map[string]any)
	assert.Equal(t, "Phones", list["title"])

	rec = get(router, "/api/discover/lists/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
