package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/shelf/internal/catalog"
	"github.com/mrlokans/shelf/internal/inventory"
)

type stubCatalog struct{}

func (stubCatalog) FetchMetadata(ctx context.Context, isbn string) (catalog.Response, error) {
	if isbn == "0451526538" {
		return catalog.Response{catalog.BibKey(isbn): {
			Title:   "The Adventures of Tom Sawyer",
			Authors: []catalog.Author{{Name: "Mark Twain"}},
		}}, nil
	}
	return catalog.Response{}, nil
}

func (stubCatalog) CoverImageURL(isbn string) string {
	return catalog.CoverImageURL(catalog.DefaultCoversURL, isbn)
}

// testEnv reopens a controller over the same store on every command, the way
// each CLI invocation reloads the database.
type testEnv struct {
	store  *inventory.MemoryStore
	opened int
	serves int
}

func newTestEnv() *testEnv {
	return &testEnv{store: inventory.NewMemoryStore()}
}

func (e *testEnv) open(ctx context.Context) (*Session, error) {
	e.opened++
	ctrl := inventory.NewController(ctx, e.store, stubCatalog{}, inventory.Options{})
	return &Session{Inventory: ctrl, Close: ctrl.Close}, nil
}

func (e *testEnv) serve(ctx context.Context) error {
	e.serves++
	return nil
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd("test", e.open, e.serve)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) inventory(t *testing.T) inventory.Inventory {
	t.Helper()
	inv, err := e.store.Load(context.Background())
	require.NoError(t, err)
	return inv
}

func TestRootCmd_ServesByDefault(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.run(t)
	require.NoError(t, err)
	assert.Equal(t, 1, env.serves)

	_, _, err = env.run(t, "serve")
	require.NoError(t, err)
	assert.Equal(t, 2, env.serves)
	assert.Zero(t, env.opened)
}

func TestAddCmd(t *testing.T) {
	t.Run("adds and prints fetched metadata", func(t *testing.T) {
		env := newTestEnv()

		out, _, err := env.run(t, "add", "0451526538")
		require.NoError(t, err)

		assert.Contains(t, out, "The Adventures of Tom Sawyer")
		assert.Contains(t, out, "Mark Twain")
		assert.Contains(t, out, "Total: 1 book(s)")

		inv := env.inventory(t)
		assert.Equal(t, []string{"0451526538"}, inv.ISBNs)
		assert.Contains(t, inv.Details, "0451526538")
	})

	t.Run("reports invalid isbns and keeps valid ones", func(t *testing.T) {
		env := newTestEnv()

		_, stderr, err := env.run(t, "add", "bogus", "9780140328721")
		require.Error(t, err)

		assert.Contains(t, stderr, inventory.InvalidISBNMessage)
		assert.Contains(t, err.Error(), "1 of 2")
		assert.Equal(t, []string{"9780140328721"}, env.inventory(t).ISBNs)
	})

	t.Run("requires an argument", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.run(t, "add")
		assert.Error(t, err)
	})
}

func TestRateCmd(t *testing.T) {
	t.Run("stores rating", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.run(t, "add", "0451526538")
		require.NoError(t, err)

		out, _, err := env.run(t, "rate", "0451526538", "4")
		require.NoError(t, err)

		assert.Contains(t, out, "Rated 0451526538 4/5")
		assert.Equal(t, 4, env.inventory(t).Ratings["0451526538"])
	})

	t.Run("rejects out of range rating", func(t *testing.T) {
		env := newTestEnv()

		for _, value := range []string{"6", "-1", "five"} {
			_, _, err := env.run(t, "rate", "0451526538", value)
			assert.Error(t, err, value)
		}
		assert.Zero(t, env.opened)
	})
}

func TestDeleteCmd(t *testing.T) {
	env := newTestEnv()
	_, _, err := env.run(t, "add", "0451526538", "9780140328721")
	require.NoError(t, err)

	out, _, err := env.run(t, "delete", "0451526538")
	require.NoError(t, err)

	assert.Contains(t, out, "Deleted 0451526538")
	inv := env.inventory(t)
	assert.Equal(t, []string{"9780140328721"}, inv.ISBNs)
	assert.NotContains(t, inv.Details, "0451526538")
	assert.NotContains(t, inv.Ratings, "0451526538")
}

func TestListCmd(t *testing.T) {
	t.Run("empty inventory", func(t *testing.T) {
		env := newTestEnv()

		out, _, err := env.run(t, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No books tracked yet.")
	})

	t.Run("json output", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.run(t, "add", "0451526538")
		require.NoError(t, err)

		out, _, err := env.run(t, "list", "--format", "json")
		require.NoError(t, err)

		var books []inventory.Book
		require.NoError(t, json.Unmarshal([]byte(out), &books))
		require.Len(t, books, 1)
		assert.Equal(t, "The Adventures of Tom Sawyer", books[0].Title)
		assert.Equal(t, "https://covers.openlibrary.org/b/isbn/0451526538-L.jpg", books[0].CoverURL)
	})

	t.Run("yaml output", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.run(t, "add", "9780140328721")
		require.NoError(t, err)

		out, _, err := env.run(t, "list", "-f", "yaml")
		require.NoError(t, err)

		var books []inventory.Book
		require.NoError(t, yaml.Unmarshal([]byte(out), &books))
		require.Len(t, books, 1)
		assert.Equal(t, inventory.TitleNotAvailable, books[0].Title)
		assert.True(t, books[0].Loaded)
		assert.False(t, books[0].Found)
	})

	t.Run("unknown format", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.run(t, "list", "--format", "xml")
		assert.Error(t, err)
	})
}

func TestRefreshCmd(t *testing.T) {
	env := newTestEnv()
	_, _, err := env.run(t, "add", "0451526538", "9780140328721")
	require.NoError(t, err)

	out, _, err := env.run(t, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "Started 2 metadata lookup(s)")
}

func TestOpenFailure(t *testing.T) {
	root := NewRootCmd("test", func(ctx context.Context) (*Session, error) {
		return nil, errors.New("database locked")
	}, nil)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"list"})

	err := root.Execute()
	assert.EqualError(t, err, "database locked")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
