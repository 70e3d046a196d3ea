// Package auth persists the login session (bearer token + user profile)
// between CLI invocations and answers questions about the token itself.
package auth

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"evscout/internal/model"
)

// ErrNotLoggedIn is returned by Load when no session file exists.
var ErrNotLoggedIn = errors.New("not logged in; run the login command first")

const sessionFile = "session.json"

// Session is the persisted login state.
type Session struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Store reads and writes the session file under the data directory. The
// file is written atomically with 0600 permissions since it contains the
// bearer token.
type Store struct {
	path string
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, sessionFile)}
}

// Load returns the persisted session, or ErrNotLoggedIn when none exists.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &sess, nil
}

// Save persists the session.
func (s *Store) Save(sess Session) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&sess, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".evscout-session-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Clear removes the session file. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// TokenExpiry extracts the exp claim from a JWT without verifying the
// signature (the server is the authority; the client only uses this to
// warn about sessions that are about to lapse). ok is false when the token
// is not a JWT or carries no expiry.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the session token has an exp claim in the past.
// Tokens without a readable expiry are assumed live; the server rejects
// them if not.
func (sess *Session) Expired(now time.Time) bool {
	exp, ok := TokenExpiry(sess.Token)
	if !ok {
		return false
	}
	return exp.Before(now)
}
