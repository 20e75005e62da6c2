// Package crypt seals small payloads with AES-256-GCM. The API client uses
// it to keep the persisted session token unreadable at rest.
//
//	box := crypt.New(secret)
//	enc, _ := box.SealJSON(stored)
//	var out Stored
//	err := box.OpenJSON(enc, &out)
//
// Output is base64url(nonce || ciphertext || tag).
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shashiranjanraj/krishi/config"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// Box seals and opens payloads under one key.
type Box struct {
	aead cipher.AEAD
}

// New derives an AES-256 key from secret via SHA-256.
func New(secret string) *Box {
	k := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(k[:])
	if err != nil {
		// a 32-byte key cannot be rejected
		panic(fmt.Sprintf("crypt: new cipher: %v", err))
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(fmt.Sprintf("crypt: new GCM: %v", err))
	}
	return &Box{aead: aead}
}

// FromConfig keys the box with APP_KEY, falling back to a per-machine value
// so a token file copied to another host does not open.
func FromConfig() *Box {
	secret := config.Get("APP_KEY", "")
	if secret == "" {
		host, _ := os.Hostname()
		home, _ := os.UserHomeDir()
		secret = "krishi-client:" + host + ":" + home
	}
	return New(secret)
}

// Seal encrypts data.
func (b *Box) Seal(data []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b.aead.Seal(nonce, nonce, data, nil)), nil
}

// Open decrypts a string produced by Seal.
func (b *Box) Open(encoded string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}
	n := b.aead.NonceSize()
	if len(data) < n {
		return nil, ErrDecrypt
	}
	plain, err := b.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// SealJSON marshals v then seals it.
func (b *Box) SealJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("crypt: marshal: %w", err)
	}
	return b.Seal(raw)
}

// OpenJSON opens encoded and unmarshals into dest.
func (b *Box) OpenJSON(encoded string, dest any) error {
	raw, err := b.Open(encoded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("crypt: unmarshal: %w", err)
	}
	return nil
}
