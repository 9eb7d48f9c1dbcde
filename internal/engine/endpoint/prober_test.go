package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/law-makers/iemrank/internal/transport"
	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *transport.Client {
	t.Helper()
	c, err := transport.New(transport.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// recorder logs the paths a test server was asked for
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestExtract_FirstCandidateWithArray(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-admin/admin-ajax.php", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "0")
	})
	mux.HandleFunc("/rankings/iems/data/", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"a":1,"b":2}]`)
	})
	mux.HandleFunc("/api/rankings/iems/", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		fmt.Fprint(w, `[["never","reached"]]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := New(Options{Fetcher: newClient(t), Logger: zerolog.Nop()})
	rows, ok := p.Extract(context.Background(), server.URL+"/rankings/iems/").Rows()

	require.True(t, ok)
	require.Equal(t, models.Dataset{{"1", "2"}}, rows)
	require.Equal(t, []string{"/wp-admin/admin-ajax.php", "/rankings/iems/data/"}, rec.get())
}

func TestExtract_SkipsNonArrayAndInvalidBodies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-admin/admin-ajax.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false}`)
	})
	mux.HandleFunc("/list/data/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/api/list/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[["S-","Elysian Annihilator"],["A+","Hidition NT6"]]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := New(Options{Fetcher: newClient(t), Logger: zerolog.Nop()})
	rows, ok := p.Extract(context.Background(), server.URL+"/list").Rows()

	require.True(t, ok)
	require.Equal(t, models.Dataset{{"S-", "Elysian Annihilator"}, {"A+", "Hidition NT6"}}, rows)
}

func TestExtract_AllCandidatesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-admin/admin-ajax.php":
			http.NotFound(w, r)
		case "/page/data/":
			fmt.Fprint(w, `<html>not json</html>`)
		default:
			fmt.Fprint(w, `[{"broken":`)
		}
	}))
	defer server.Close()

	p := New(Options{Fetcher: newClient(t), Logger: zerolog.Nop()})
	require.False(t, p.Extract(context.Background(), server.URL+"/page/").OK())
}

func TestExtract_ProbeTimeoutMovesOn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-admin/admin-ajax.php", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/p/data/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[["ok"]]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := New(Options{Fetcher: newClient(t), Timeout: 100 * time.Millisecond, Logger: zerolog.Nop()})
	rows, ok := p.Extract(context.Background(), server.URL+"/p/").Rows()
	require.True(t, ok)
	require.Equal(t, models.Dataset{{"ok"}}, rows)
}

func TestExtract_SharesSessionCookies(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("/page/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "visited", Value: "1", Path: "/"})
	})
	mux.HandleFunc("/wp-admin/admin-ajax.php", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("visited"); err == nil {
			sawCookie = true
		}
		fmt.Fprint(w, `[["row"]]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newClient(t)
	_, _, err := client.Fetch(context.Background(), server.URL+"/page/", time.Second)
	require.NoError(t, err)

	p := New(Options{Fetcher: client, Logger: zerolog.Nop()})
	require.True(t, p.Extract(context.Background(), server.URL+"/page/").OK())
	require.True(t, sawCookie)
}

func TestCandidates_Override(t *testing.T) {
	p := New(Options{
		Candidates: []string{"/feed.json", "https://cdn.example.com/iems.json"},
		Logger:     zerolog.Nop(),
	})
	got, err := p.Candidates("https://example.com/rankings/iems/")
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.com/feed.json",
		"https://cdn.example.com/iems.json",
	}, got)
}

func TestNonEmptyArray(t *testing.T) {
	require.True(t, nonEmptyArray([]byte(` [{"a":1}] `)))
	require.True(t, nonEmptyArray([]byte(`[1]`)))
	require.False(t, nonEmptyArray([]byte(`[]`)))
	require.False(t, nonEmptyArray([]byte(`[ ]`)))
	require.False(t, nonEmptyArray([]byte(`{"a":[1]}`)))
	require.False(t, nonEmptyArray([]byte(``)))
}
