package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shashiranjanraj/krishi/pkg/crypt"
)

// ErrNoToken is returned by TokenFile.Load when nothing is persisted.
var ErrNoToken = errors.New("client: no stored token")

// TokenFile keeps the session token on disk, sealed with AES-GCM and
// readable only by the owner.
type TokenFile struct {
	path string
	box  *crypt.Box
}

func NewTokenFile(path string, box *crypt.Box) *TokenFile {
	return &TokenFile{path: path, box: box}
}

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (f *TokenFile) Path() string { return f.path }

func (f *TokenFile) Save(token string, expiresAt time.Time) error {
	sealed, err := f.box.SealJSON(storedToken{Token: token, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("client: seal token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("client: token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(sealed), 0o600); err != nil {
		return fmt.Errorf("client: write token: %w", err)
	}
	return nil
}

// Load returns the stored token. A file that cannot be opened with this
// box is treated as absent.
func (f *TokenFile) Load() (string, time.Time, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", time.Time{}, ErrNoToken
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("client: read token: %w", err)
	}
	var st storedToken
	if err := f.box.OpenJSON(string(raw), &st); err != nil {
		if errors.Is(err, crypt.ErrDecrypt) {
			return "", time.Time{}, ErrNoToken
		}
		return "", time.Time{}, fmt.Errorf("client: open token: %w", err)
	}
	if st.Token == "" {
		return "", time.Time{}, ErrNoToken
	}
	return st.Token, st.ExpiresAt, nil
}

// Remove deletes the file; a missing file is not an error.
func (f *TokenFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("client: remove token: %w", err)
	}
	return nil
}
