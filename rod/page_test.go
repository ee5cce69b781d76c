//go:build integration

package rod_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Page implements shopscrape.Page.
var _ shopscrape.Page = (*rod.Page)(nil)

func newShop(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		next := `<a class="next" href="/search?page=2">Next</a>`
		if page == "2" {
			next = `<a class="next" aria-disabled="true">Next</a>`
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<!DOCTYPE html><html><body>
<div id="grid"></div>
%s
<script>
setTimeout(function () {
  document.getElementById('grid').innerHTML = '<div class="card"><a href="/p/1">One</a></div>';
}, 100);
</script>
</body></html>`, next)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<html><head><title>404 Not Found</title></head></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newPage(t *testing.T) *rod.Page {
	t.Helper()
	page, err := rod.NewPage(rod.Options{Headless: true, Incognito: true})
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })
	return page
}

func TestPage_Integration(t *testing.T) {
	t.Parallel()

	t.Run("waits for script-rendered cards", func(t *testing.T) {
		t.Parallel()

		srv := newShop(t)
		page := newPage(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := page.Navigate(ctx, srv.URL+"/search?page=1")
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status)

		require.NoError(t, page.WaitVisible(ctx, "div.card"))
		html, err := page.HTML(ctx)
		require.NoError(t, err)
		assert.Contains(t, html, `href="/p/1"`)
	})

	t.Run("follows the next control", func(t *testing.T) {
		t.Parallel()

		srv := newShop(t)
		page := newPage(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := page.Navigate(ctx, srv.URL+"/search?page=1")
		require.NoError(t, err)

		require.NoError(t, page.Click(ctx, "a.next"))
		require.NoError(t, page.WaitIdle(ctx))

		loc, err := page.Location(ctx)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(loc, "/search?page=2"), "got %s", loc)
	})

	t.Run("reports error statuses", func(t *testing.T) {
		t.Parallel()

		srv := newShop(t)
		page := newPage(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := page.Navigate(ctx, srv.URL+"/missing")

		require.NoError(t, err)
		assert.Equal(t, 404, resp.Status)
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		t.Parallel()

		page := newPage(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := page.Navigate(ctx, "https://example.com")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
