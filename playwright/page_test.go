//go:build integration

package playwright_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/shopscrape/playwright"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopHTML = `<!DOCTYPE html><html><head><title>Results</title></head><body style="height:4000px">
<div id="grid"></div>
<a class="next" href="/search?page=2">Next</a>
<script>
window.addEventListener('scroll', function () {
  document.getElementById('grid').innerHTML = '<div class="card"><a href="/p/1">One</a></div>';
}, {once: true});
</script>
</body></html>`

func newPage(t *testing.T) (*playwright.Page, string) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(shopHTML))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	page, err := playwright.NewPage(playwright.Options{Headless: true, Locale: "en-US"})
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })
	return page, srv.URL
}

func TestPage_Integration(t *testing.T) {
	t.Parallel()

	t.Run("reveals lazy cards after a scroll", func(t *testing.T) {
		t.Parallel()

		page, base := newPage(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := page.Navigate(ctx, base+"/search?page=1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, base+"/search?page=1", resp.URL)

		require.NoError(t, page.Scroll(ctx, 800))
		require.NoError(t, page.WaitVisible(ctx, "div.card"))

		html, err := page.HTML(ctx)
		require.NoError(t, err)
		assert.Contains(t, html, `href="/p/1"`)
	})

	t.Run("clicks through to the next page", func(t *testing.T) {
		t.Parallel()

		page, base := newPage(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := page.Navigate(ctx, base+"/search?page=1")
		require.NoError(t, err)
		require.NoError(t, page.Click(ctx, "a.next"))
		require.NoError(t, page.WaitIdle(ctx))

		loc, err := page.Location(ctx)
		require.NoError(t, err)
		assert.Equal(t, base+"/search?page=2", loc)
	})

	t.Run("reports error statuses", func(t *testing.T) {
		t.Parallel()

		page, base := newPage(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := page.Navigate(ctx, base+"/gone")

		require.NoError(t, err)
		assert.Equal(t, http.StatusGone, resp.Status)
	})

	t.Run("times out waiting for a missing element", func(t *testing.T) {
		t.Parallel()

		page, base := newPage(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := page.Navigate(ctx, base+"/search?page=1")
		require.NoError(t, err)

		wctx, wcancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer wcancel()
		err = page.WaitVisible(wctx, "div.never")

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
