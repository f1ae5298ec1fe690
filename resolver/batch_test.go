package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lukemcguire/linktitle/result"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		links []string
		want  []string
	}{
		{"empty", nil, []string{}},
		{"no duplicates", []string{"a", "b"}, []string{"a", "b"}},
		{"keeps first occurrence", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
		{"drops empty strings", []string{"", "a", ""}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedupe(tt.links))
		})
	}
}

func TestResolveBatch_CoversEveryLinkOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", htmlHandler("<title>Fine</title>"))
	mux.HandleFunc("/pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
	})
	mux.HandleFunc("/missing", http.NotFound)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	links := []string{
		srv.URL + "/ok",
		srv.URL + "/pdf",
		srv.URL + "/ok",
		srv.URL + "/missing",
		"not a link",
	}

	r := newTestResolver(t, Config{Concurrency: 2})
	res := r.ResolveBatch(context.Background(), links)

	require.Len(t, res.Resolutions, 4)
	assert.Equal(t, 4, res.Stats.Total)
	assert.Equal(t, 1, res.Stats.Resolved)
	assert.Equal(t, 3, res.Stats.Failed)
	assert.NotEmpty(t, res.Stats.BatchID)

	wantOrder := []string{srv.URL + "/ok", srv.URL + "/pdf", srv.URL + "/missing", "not a link"}
	for i, want := range wantOrder {
		assert.Equal(t, want, res.Resolutions[i].Link)
	}

	ok, found := res.Lookup(srv.URL + "/ok")
	require.True(t, found)
	assert.True(t, ok.Resolved)
	assert.Equal(t, "Fine (ok)", ok.Title)
	assert.Equal(t, srv.URL+"/ok", ok.URL)

	pdf, found := res.Lookup(srv.URL + "/pdf")
	require.True(t, found)
	assert.False(t, pdf.Resolved)
	assert.Equal(t, result.KindUnsupportedContentType, pdf.Kind)
	assert.Equal(t, "pdf", pdf.Title)

	missing, found := res.Lookup(srv.URL + "/missing")
	require.True(t, found)
	assert.Equal(t, result.KindHTTP, missing.Kind)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	invalid, found := res.Lookup("not a link")
	require.True(t, found)
	assert.Equal(t, result.KindInvalidLink, invalid.Kind)
	assert.Equal(t, "not a link", invalid.Title)
}

func TestResolveBatch_UsesRedirectAsURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/long/article-name", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/long/article-name", htmlHandler("<title>Article</title>"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := newTestResolver(t, Config{})
	res := r.ResolveBatch(context.Background(), []string{srv.URL + "/short"})

	require.Len(t, res.Resolutions, 1)
	got := res.Resolutions[0]
	assert.True(t, got.Resolved)
	assert.Equal(t, srv.URL+"/long/article-name", got.URL)
	assert.Equal(t, "Article (article name)", got.Title)
}

func TestResolveBatch_RedirectTargetIsAlsoInput(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, req *http.Request) {
		// The client sets Referer when it follows a redirect.
		if req.Referer() != "" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		htmlHandler("<title>Bee</title>")(w, req)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	linkA, linkB := srv.URL+"/a", srv.URL+"/b"

	for range 20 {
		r := newTestResolver(t, Config{Concurrency: 2})
		res := r.ResolveBatch(context.Background(), []string{linkA, linkB})
		require.Len(t, res.Resolutions, 2)

		a, found := res.Lookup(linkA)
		require.True(t, found)
		b, found := res.Lookup(linkB)
		require.True(t, found)

		assert.True(t, b.Resolved)
		assert.Equal(t, "Bee (b)", b.Title)

		assert.False(t, a.Resolved)
		assert.Equal(t, result.KindHTTP, a.Kind)
		assert.Equal(t, http.StatusNotFound, a.StatusCode)
		assert.Equal(t, b.Title, a.Title)
		assert.Equal(t, linkB, a.URL)
	}
}

func TestResolveBatch_LogsStoreAtDebug(t *testing.T) {
	srv := httptest.NewServer(htmlHandler("<title>Page</title>"))
	defer srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	r := newTestResolver(t, Config{}, WithLogger(zap.New(core)))
	r.ResolveBatch(context.Background(), []string{srv.URL + "/one"})

	entries := logs.FilterMessage("batch store").All()
	require.Len(t, entries, 1)
	titles, ok := entries[0].ContextMap()["titles"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Page (one)", titles[srv.URL+"/one"])
}

func TestResolveBatch_CancelledWithUnreadProgress(t *testing.T) {
	srv := httptest.NewServer(htmlHandler("<title>Page</title>"))
	defer srv.Close()

	links := make([]string, 5)
	for i := range links {
		links[i] = srv.URL + "/" + string(rune('a'+i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nobody reads from events.
	events := make(chan ResolveEvent)
	r := newTestResolver(t, Config{Concurrency: 2}, WithProgress(events))

	done := make(chan *result.Result, 1)
	go func() { done <- r.ResolveBatch(ctx, links) }()

	select {
	case res := <-done:
		assert.Len(t, res.Resolutions, len(links))
	case <-time.After(5 * time.Second):
		t.Fatal("ResolveBatch blocked on the progress channel after cancellation")
	}
}

func TestResolveBatch_Progress(t *testing.T) {
	srv := httptest.NewServer(htmlHandler("<title>Page</title>"))
	defer srv.Close()

	links := []string{srv.URL + "/one", srv.URL + "/two", srv.URL + "/three"}
	events := make(chan ResolveEvent, len(links))

	r := newTestResolver(t, Config{}, WithProgress(events))
	res := r.ResolveBatch(context.Background(), links)
	close(events)

	require.Len(t, res.Resolutions, 3)

	seen := make(map[string]bool)
	maxDone := 0
	for ev := range events {
		seen[ev.Link] = true
		assert.Equal(t, 3, ev.Total)
		assert.True(t, ev.Resolved)
		assert.Zero(t, ev.Failed)
		if ev.Done > maxDone {
			maxDone = ev.Done
		}
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, 3, maxDone)
}

func TestResolveBatch_Empty(t *testing.T) {
	r := newTestResolver(t, Config{})

	start := time.Now()
	res := r.ResolveBatch(context.Background(), nil)

	assert.Empty(t, res.Resolutions)
	assert.Zero(t, res.Stats.Total)
	assert.Less(t, time.Since(start), time.Second)
}
