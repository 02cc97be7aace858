package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Session is a cached login.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the session can still be used at now.
func (s Session) Live(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

// Store persists at most one Session.
type Store interface {
	// Load returns the cached session if one exists and has not expired.
	Load() (Session, bool, error)
	// Save replaces the cached session with a fresh one for token.
	Save(token string) (Session, error)
	// Clear removes the cached session. Clearing an empty store is not an error.
	Clear() error
}

const lockTimeout = 5 * time.Second

// FileStore keeps the session as a single JSON file. Writers hold an advisory
// lock on <path>.lock and replace the file by rename, so readers observe
// either the previous record or the new one.
type FileStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewFileStore returns a store at path whose sessions live for ttl.
func NewFileStore(path string, ttl time.Duration) *FileStore {
	return &FileStore{path: path, ttl: ttl, now: time.Now}
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Session, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("cannot read session %s: %w", s.path, err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		// Unreadable records are treated as absent; the next login overwrites them.
		return Session{}, false, nil
	}
	if !sess.Live(s.now()) {
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *FileStore) Save(token string) (Session, error) {
	now := s.now()
	sess := Session{Token: token, CreatedAt: now.UTC(), ExpiresAt: sessionExpiry(token, now, s.ttl).UTC()}
	b, err := json.Marshal(sess)
	if err != nil {
		return Session{}, err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Session{}, fmt.Errorf("cannot create session dir %s: %w", dir, err)
	}

	err = s.withLock(func() error {
		tmp, err := os.CreateTemp(dir, ".session-*.tmp")
		if err != nil {
			return fmt.Errorf("cannot create temp session file: %w", err)
		}
		tmpName := tmp.Name()
		defer os.Remove(tmpName)

		if _, err := tmp.Write(b); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("cannot write session: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("cannot sync session: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		if err := os.Rename(tmpName, s.path); err != nil {
			return fmt.Errorf("cannot install session %s: %w", s.path, err)
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *FileStore) Clear() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("cannot create session dir: %w", err)
	}
	return s.withLock(func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot remove session %s: %w", s.path, err)
		}
		return nil
	})
}

func (s *FileStore) withLock(fn func() error) error {
	lockPath := s.path + ".lock"
	l := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := l.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("cannot acquire session lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("session is locked by another process (lock: %s)", lockPath)
	}
	defer func() { _ = l.Unlock() }()

	return fn()
}
