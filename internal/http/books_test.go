package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/shelf/internal/catalog"
	"github.com/mrlokans/shelf/internal/inventory"
)

type stubCatalog struct {
	records map[string]catalog.Record
}

func (s *stubCatalog) FetchMetadata(ctx context.Context, isbn string) (catalog.Response, error) {
	rec, ok := s.records[isbn]
	if !ok {
		return catalog.Response{}, nil
	}
	return catalog.Response{catalog.BibKey(isbn): rec}, nil
}

func (s *stubCatalog) CoverImageURL(isbn string) string {
	return catalog.CoverImageURL(catalog.DefaultCoversURL, isbn)
}

type brokenStore struct{}

func (brokenStore) Load(ctx context.Context) (inventory.Inventory, error) {
	return inventory.Empty(), nil
}

func (brokenStore) Save(ctx context.Context, inv inventory.Inventory) error {
	return errors.New("disk full")
}

func setupBooksRouter(t *testing.T, store inventory.Store) (*gin.Engine, *inventory.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := &stubCatalog{records: map[string]catalog.Record{
		"0451526538": {Title: "The Adventures of Tom Sawyer", Authors: []catalog.Author{{Name: "Mark Twain"}}},
		"9780140328721": {Title: "Fantastic Mr Fox", Authors: []catalog.Author{{Name: "Roald Dahl"}}},
	}}
	ctrl := inventory.NewController(context.Background(), store, cat, inventory.Options{})
	t.Cleanup(ctrl.Close)

	router := NewRouter(RouterConfig{Inventory: ctrl, Version: "test"})
	return router, ctrl
}

func postForm(router *gin.Engine, path string, values url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func sendJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestBooksController_Index(t *testing.T) {
	t.Run("renders empty page", func(t *testing.T) {
		router, _ := setupBooksRouter(t, inventory.NewMemoryStore())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Book Inventory Manager")
		assert.Contains(t, w.Body.String(), `name="isbn"`)
		assert.NotContains(t, w.Body.String(), "alert-danger")
	})

	t.Run("renders cards in list order", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "9780140328721"))
		require.NoError(t, ctrl.Add(context.Background(), "0451526538"))
		ctrl.Wait()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)

		body := w.Body.String()
		assert.Equal(t, http.StatusOK, w.Code)
		fox := strings.Index(body, "Fantastic Mr Fox")
		sawyer := strings.Index(body, "The Adventures of Tom Sawyer")
		require.NotEqual(t, -1, fox)
		require.NotEqual(t, -1, sawyer)
		assert.Less(t, fox, sawyer)
		assert.Contains(t, body, "Author: Roald Dahl")
		assert.Contains(t, body, "Rating: 0/5")
		assert.Contains(t, body, "https://covers.openlibrary.org/b/isbn/9780140328721-L.jpg")
	})

	t.Run("renders placeholder for unknown book", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "0000000000"))
		ctrl.Wait()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), inventory.TitleNotAvailable)
		assert.Contains(t, w.Body.String(), inventory.AuthorNotAvailable)
	})
}

func TestBooksController_Forms(t *testing.T) {
	t.Run("add redirects and tracks the book", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())

		w := postForm(router, "/books", url.Values{"isbn": {" 0451526538 "}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, []string{"0451526538"}, ctrl.Snapshot().Inventory.ISBNs)
	})

	t.Run("invalid add shows error banner", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())

		w := postForm(router, "/books", url.Values{"isbn": {"12345"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Empty(t, ctrl.Snapshot().Inventory.ISBNs)

		page := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		router.ServeHTTP(page, req)
		assert.Contains(t, page.Body.String(), inventory.InvalidISBNMessage)
	})

	t.Run("rate updates rating", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "0451526538"))

		w := postForm(router, "/books/0451526538/rating", url.Values{"rating": {"4"}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, 4, ctrl.Snapshot().Inventory.Ratings["0451526538"])
	})

	t.Run("rate rejects out of range", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "0451526538"))

		for _, value := range []string{"6", "-1", "abc", ""} {
			w := postForm(router, "/books/0451526538/rating", url.Values{"rating": {value}})
			assert.Equal(t, http.StatusBadRequest, w.Code, value)
		}
		assert.Equal(t, 0, ctrl.Snapshot().Inventory.Ratings["0451526538"])
	})

	t.Run("delete removes book", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "0451526538"))

		w := postForm(router, "/books/0451526538/delete", nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Empty(t, ctrl.Snapshot().Inventory.ISBNs)
	})

	t.Run("save failure returns 500", func(t *testing.T) {
		router, _ := setupBooksRouter(t, brokenStore{})

		w := postForm(router, "/books", url.Values{"isbn": {"0451526538"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestBooksController_API(t *testing.T) {
	t.Run("lists books", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "0451526538"))
		ctrl.Wait()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Books []inventory.Book `json:"books"`
			Count int              `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 1, response.Count)
		assert.Equal(t, "The Adventures of Tom Sawyer", response.Books[0].Title)
		assert.Equal(t, "Mark Twain", response.Books[0].Authors)
		assert.True(t, response.Books[0].Loaded)
	})

	t.Run("add returns 202", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())

		w := sendJSON(router, "POST", "/api/books", `{"isbn":"9780140328721"}`)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []string{"9780140328721"}, ctrl.Snapshot().Inventory.ISBNs)
	})

	t.Run("add rejects invalid isbn", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())

		w := sendJSON(router, "POST", "/api/books", `{"isbn":"not-an-isbn"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), inventory.InvalidISBNMessage)
		assert.Empty(t, ctrl.Snapshot().Inventory.ISBNs)
	})

	t.Run("add requires isbn", func(t *testing.T) {
		router, _ := setupBooksRouter(t, inventory.NewMemoryStore())

		w := sendJSON(router, "POST", "/api/books", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rate accepts zero", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Rate(context.Background(), "0451526538", 3))

		w := sendJSON(router, "PUT", "/api/books/0451526538/rating", `{"rating":0}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, ctrl.Snapshot().Inventory.Ratings["0451526538"])
	})

	t.Run("rate rejects invalid body", func(t *testing.T) {
		router, _ := setupBooksRouter(t, inventory.NewMemoryStore())

		for _, body := range []string{`{"rating":6}`, `{"rating":-1}`, `{}`, `nope`} {
			w := sendJSON(router, "PUT", "/api/books/0451526538/rating", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("delete returns 204", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "0451526538"))

		w := sendJSON(router, "DELETE", "/api/books/0451526538", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, ctrl.Snapshot().Inventory.ISBNs)
	})

	t.Run("refresh reports started lookups", func(t *testing.T) {
		router, ctrl := setupBooksRouter(t, inventory.NewMemoryStore())
		require.NoError(t, ctrl.Add(context.Background(), "0451526538"))
		require.NoError(t, ctrl.Add(context.Background(), "9780140328721"))
		ctrl.Wait()

		w := sendJSON(router, "POST", "/api/books/refresh", "")

		assert.Equal(t, http.StatusAccepted, w.Code)
		var response map[string]int
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 2, response["started"])
	})
}
