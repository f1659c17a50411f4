package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	webhttp "github.com/webmark/webmark/http"
)

const urlsetXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc>https://example.com/about</loc></url>
  <url><loc>https://example.com/docs/intro</loc></url>
</urlset>`

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("discovers URLs via robots.txt directive", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "User-agent: *\nSitemap: %s/custom-sitemap.xml\n", srv.URL)
		})
		mux.HandleFunc("/custom-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(urlsetXML))
		})

		svc := webhttp.NewSitemapService(nil)
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://example.com/",
			"https://example.com/about",
			"https://example.com/docs/intro",
		}, urls)
	})

	t.Run("falls back to /sitemap.xml without robots.txt", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(urlsetXML))
		})

		svc := webhttp.NewSitemapService(nil)
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Len(t, urls, 3)
	})

	t.Run("resolves sitemap indexes recursively", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%s/sitemap-a.xml</loc></sitemap>
  <sitemap><loc>%s/sitemap-b.xml</loc></sitemap>
</sitemapindex>`, srv.URL, srv.URL)
		})
		mux.HandleFunc("/sitemap-a.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<urlset><url><loc>https://example.com/a</loc></url></urlset>`))
		})
		mux.HandleFunc("/sitemap-b.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<urlset><url><loc>https://example.com/b</loc></url></urlset>`))
		})

		svc := webhttp.NewSitemapService(nil)
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, urls)
	})

	t.Run("self-referencing index does not loop", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<sitemapindex>
  <sitemap><loc>%s/sitemap.xml</loc></sitemap>
  <sitemap><loc>%s/leaf.xml</loc></sitemap>
</sitemapindex>`, srv.URL, srv.URL)
		})
		mux.HandleFunc("/leaf.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<urlset><url><loc>https://example.com/leaf</loc></url></urlset>`))
		})

		svc := webhttp.NewSitemapService(nil)
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/leaf"}, urls)
	})

	t.Run("deduplicates URLs across sitemaps", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "Sitemap: %s/a.xml\nSitemap: %s/b.xml\n", srv.URL, srv.URL)
		})
		shared := `<urlset><url><loc>https://example.com/same</loc></url></urlset>`
		mux.HandleFunc("/a.xml", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(shared)) })
		mux.HandleFunc("/b.xml", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(shared)) })

		svc := webhttp.NewSitemapService(nil)
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/same"}, urls)
	})

	t.Run("no sitemap returns an empty slice", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		svc := webhttp.NewSitemapService(nil)
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("discovery runs at the origin root regardless of seed path", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(urlsetXML))
		})

		svc := webhttp.NewSitemapService(nil)
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/docs/deep/page")

		require.NoError(t, err)
		assert.Len(t, urls, 3)
	})

	t.Run("invalid base URL is rejected", func(t *testing.T) {
		t.Parallel()

		svc := webhttp.NewSitemapService(nil)
		_, err := svc.DiscoverURLs(context.Background(), "://bad")

		assert.Error(t, err)
	})
}
