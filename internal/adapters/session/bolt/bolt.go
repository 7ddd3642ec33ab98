package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"time"

	"go.etcd.io/bbolt"
)

const bucketSessions = "upload_sessions"

// SessionStore keeps upload sessions in a local bbolt file
type SessionStore struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

type entry struct {
	Session   domain.UploadSession `json:"session"`
	ExpiresAt time.Time            `json:"expires_at"`
}

var _ port.SessionStore = (*SessionStore)(nil)

// NewSessionStore opens (or creates) the session file at path
func NewSessionStore(path string, ttl time.Duration) (*SessionStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open session store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSessions))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) Get(_ context.Context, token string) (*domain.UploadSession, error) {
	var e entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketSessions)).Get([]byte(token))
		if data == nil {
			return domain.ErrSessionNotFound
		}
		return json.Unmarshal(data, &e)
	})
	if err != nil {
		return nil, err
	}

	if !e.ExpiresAt.IsZero() && s.now().After(e.ExpiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	return &e.Session, nil
}

func (s *SessionStore) Save(_ context.Context, token string, session domain.UploadSession) error {
	e := entry{Session: session}
	if s.ttl > 0 {
		e.ExpiresAt = s.now().Add(s.ttl)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Put([]byte(token), data)
	})
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Delete([]byte(token))
	})
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	purged := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSessions))

		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil {
				// unreadable entries cannot be resumed either
				expired = append(expired, append([]byte(nil), k...))
				return nil
			}
			if !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, key := range expired {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}
		purged = len(expired)
		return nil
	})
	return purged, err
}
