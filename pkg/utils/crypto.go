package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var ErrSealedTooShort = errors.New("sealed value too short")

// Sealer encrypts small blobs with AES-256-GCM. The label is bound as
// associated data, so a value sealed under one label does not open under
// another even with the same secret.
type Sealer struct {
	aead  cipher.AEAD
	label []byte
}

// NewSealer derives the AES key from secret with SHA-256.
func NewSealer(secret, label string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("empty secret")
	}
	sum := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(sum[:])
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Sealer{aead: aead, label: []byte(label)}, nil
}

// Seal returns base64(nonce || ciphertext).
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		slog.Info(err.Error())
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, plaintext, s.label)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decode sealed value: %w", err)
	}

	n := s.aead.NonceSize()
	if len(data) < n+s.aead.Overhead() {
		return nil, ErrSealedTooShort
	}

	plaintext, err := s.aead.Open(nil, data[:n], data[n:], s.label)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return plaintext, nil
}
