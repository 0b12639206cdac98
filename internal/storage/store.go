package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/newsdesk/internal/news"
)

var (
	savedBucket   = []byte("saved")
	historyBucket = []byte("history")
	metaBucket    = []byte("metadata")
)

// ErrNotFound is returned for lookups of absent keys.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{savedBucket, historyBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveArticle bookmarks a. Saving an already saved article refreshes its
// payload but keeps the original SavedAt.
func (s *Store) SaveArticle(a news.ArticleSummary) error {
	if a.ID == "" {
		return fmt.Errorf("saving article: empty id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(savedBucket)
		rec := SavedArticle{Article: a, SavedAt: s.now()}
		if existing := b.Get([]byte(a.ID)); existing != nil {
			var prev SavedArticle
			if err := json.Unmarshal(existing, &prev); err == nil {
				rec.SavedAt = prev.SavedAt
			}
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(a.ID), data)
	})
}

func (s *Store) RemoveArticle(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(savedBucket).Delete([]byte(id))
	})
}

// ToggleSaved flips the bookmark for a and reports the new state.
func (s *Store) ToggleSaved(a news.ArticleSummary) (bool, error) {
	saved, err := s.IsSaved(a.ID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.RemoveArticle(a.ID)
	}
	return true, s.SaveArticle(a)
}

func (s *Store) IsSaved(id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(savedBucket).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

func (s *Store) GetSaved(id string) (*SavedArticle, error) {
	var rec SavedArticle
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(savedBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SavedArticles lists bookmarks, most recently saved first. A positive limit
// caps the result.
func (s *Store) SavedArticles(limit int) ([]*SavedArticle, error) {
	var out []*SavedArticle
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(savedBucket).ForEach(func(_ []byte, v []byte) error {
			var rec SavedArticle
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			out = append(out, &rec)
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// RecordQuery adds query to the history, bumping its counter when present.
// Queries are keyed case-insensitively.
func (s *Store) RecordQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	key := []byte(strings.ToLower(query))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)
		rec := QueryRecord{Query: query}
		if data := b.Get(key); data != nil {
			_ = json.Unmarshal(data, &rec)
			rec.Query = query
		}
		rec.Count++
		rec.LastUsed = s.now()
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// RecentQueries returns history entries, newest first.
func (s *Store) RecentQueries(limit int) ([]QueryRecord, error) {
	var out []QueryRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(historyBucket).ForEach(func(_ []byte, v []byte) error {
			var rec QueryRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			out = append(out, rec)
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// ClearHistory drops every history entry.
func (s *Store) ClearHistory() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(historyBucket)
		return err
	})
}

// SetMeta and GetMeta hold small string settings such as the last card
// variant.
func (s *Store) SetMeta(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put([]byte(key), []byte(value))
	})
}

func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		value = string(data)
		return nil
	})
	return value, err
}
