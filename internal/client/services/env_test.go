package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/client"
	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/client/flash"
	"github.com/dmitrijs2005/hhblog/internal/client/storage"
	"github.com/dmitrijs2005/hhblog/internal/logging"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// env is a fake blog backend wired to real client, store and bus.
type env struct {
	router *mux.Router
	api    *client.HTTPClient
	store  *storage.Store
	bus    *events.Bus
	flash  *flash.Flash
	deps   Deps
	now    time.Time

	mu    sync.Mutex
	down  bool
	calls map[string]int
	auth  []string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := storage.InitDatabase(context.Background(), storage.DSN(filepath.Join(t.TempDir(), storage.FileName)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{
		router: mux.NewRouter(),
		store:  storage.New(db, logging.Nop()),
		bus:    events.NewBus(),
		flash:  flash.New(),
		now:    time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
		calls:  map[string]int{},
	}
	e.router.Use(e.middleware)

	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	e.api = client.New(srv.URL, e.store)
	e.deps = Deps{
		API:       e.api,
		Store:     e.store,
		Bus:       e.bus,
		Flash:     e.flash,
		Log:       logging.Nop(),
		ToastTTL:  time.Minute,
		BannerTTL: time.Minute,
		Now:       func() time.Time { return e.now },
	}
	return e
}

// middleware counts calls, records the Authorization header and answers
// 500 while the backend is down.
func (e *env) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.calls[r.Method+" "+r.URL.Path]++
		e.auth = append(e.auth, r.Header.Get("Authorization"))
		down := e.down
		e.mu.Unlock()

		if down {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (e *env) setDown(down bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.down = down
}

func (e *env) count(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[key]
}

func (e *env) handle(method, path string, fn http.HandlerFunc) {
	e.router.HandleFunc(path, fn).Methods(method)
}

func (e *env) reply(method, path string, status int, body any) {
	e.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (e *env) login(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.SetSession(context.Background(), "abc"))
}

func (e *env) toast() string {
	msg, ok := e.flash.Current()
	if !ok {
		return ""
	}
	return msg.Text
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
