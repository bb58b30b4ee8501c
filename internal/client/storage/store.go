// Package storage is the typed view of the local key/value store: the
// session credential and flag, the cached profile, the list snapshots and
// the notification read-marker.
//
// Every accessor reads the table afresh and decodes into new values, so a
// write made by another process is visible on the next call.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/hhblog/internal/dbx"
	"github.com/dmitrijs2005/hhblog/internal/logging"
	"github.com/dmitrijs2005/hhblog/internal/timex"
)

const (
	KeyToken         = "token"
	KeyLoggedIn      = "isLoggedIn"
	KeyProfile       = "user_profile"
	KeyArticles      = "admin_articles"
	KeyCategories    = "admin_categories"
	KeyNotifications = "notifications"
	KeyReadMarker    = "notifications_read_at"

	loggedInValue = "true"
)

type Store struct {
	db   *sql.DB
	repo kv.Repository
	log  logging.Logger
}

func New(db *sql.DB, log logging.Logger) *Store {
	return &Store{db: db, repo: kv.NewSQLiteRepository(db), log: log}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) getString(ctx context.Context, key string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Token returns the stored bearer credential, or "" when there is none.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyToken)
}

// Session returns the credential when both it and the logged-in flag are
// present. A credential without the flag, or the flag without a
// credential, is purged and reported as no session.
func (s *Store) Session(ctx context.Context) (string, bool, error) {
	token, err := s.getString(ctx, KeyToken)
	if err != nil {
		return "", false, err
	}
	flag, err := s.getString(ctx, KeyLoggedIn)
	if err != nil {
		return "", false, err
	}

	hasToken := token != ""
	hasFlag := flag == loggedInValue
	switch {
	case hasToken && hasFlag:
		return token, true, nil
	case hasToken || flag != "":
		s.log.Warn(ctx, "inconsistent session in store, purging", "has_token", hasToken, "flag", flag)
		return "", false, s.ClearSession(ctx)
	default:
		return "", false, nil
	}
}

// SetSession writes the credential and the flag in one transaction.
func (s *Store) SetSession(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyLoggedIn, []byte(loggedInValue))
	})
}

// ClearSession removes the credential and the flag in one transaction.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.deleteAll(ctx, KeyToken, KeyLoggedIn)
}

// ClearAuth removes the credential, the flag and the cached profile.
func (s *Store) ClearAuth(ctx context.Context) error {
	return s.deleteAll(ctx, KeyToken, KeyLoggedIn, KeyProfile)
}

func (s *Store) deleteAll(ctx context.Context, keys ...string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		for _, k := range keys {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// getJSON decodes key into a new T. A missing or undecodable value reports
// found=false; the latter is logged and otherwise treated as absent.
func getJSON[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var out T
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return out, false, err
	}
	if len(raw) == 0 {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn(ctx, "discarding undecodable stored value", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return out, true, nil
}

func setJSON[T any](ctx context.Context, s *Store, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, key, b)
}

func (s *Store) Profile(ctx context.Context) (*models.User, error) {
	u, ok, err := getJSON[models.User](ctx, s, KeyProfile)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SetProfile(ctx context.Context, u models.User) error {
	return setJSON(ctx, s, KeyProfile, u)
}

func (s *Store) ClearProfile(ctx context.Context) error {
	return s.repo.Delete(ctx, KeyProfile)
}

// ReadMarker returns when the notification view was last opened, or the
// zero time if never.
func (s *Store) ReadMarker(ctx context.Context) (time.Time, error) {
	v, err := s.getString(ctx, KeyReadMarker)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		s.log.Warn(ctx, "discarding malformed read-marker", "value", v)
		return time.Time{}, nil
	}
	return timex.UnixMilli(ms), nil
}

func (s *Store) SetReadMarker(ctx context.Context, at time.Time) error {
	return s.repo.Set(ctx, KeyReadMarker, []byte(strconv.FormatInt(at.UnixMilli(), 10)))
}

func (s *Store) Articles() Snapshot[models.Post] {
	return Snapshot[models.Post]{store: s, key: KeyArticles}
}

func (s *Store) Categories() Snapshot[models.Category] {
	return Snapshot[models.Category]{store: s, key: KeyCategories}
}

func (s *Store) Notifications() Snapshot[models.Notification] {
	return Snapshot[models.Notification]{store: s, key: KeyNotifications}
}

// Snapshot is the cached copy of one remote list.
type Snapshot[T any] struct {
	store *Store
	key   string
}

// Load returns the cached list; ok is false when nothing usable is stored.
func (sn Snapshot[T]) Load(ctx context.Context) ([]T, bool, error) {
	return getJSON[[]T](ctx, sn.store, sn.key)
}

func (sn Snapshot[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return setJSON(ctx, sn.store, sn.key, items)
}

func (sn Snapshot[T]) Clear(ctx context.Context) error {
	return sn.store.repo.Delete(ctx, sn.key)
}
