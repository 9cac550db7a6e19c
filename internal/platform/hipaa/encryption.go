package hipaa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// PayloadEncryptor seals stored eligibility payloads with AES-256-GCM. The
// nonce is prepended to each ciphertext.
type PayloadEncryptor struct {
	aead cipher.AEAD
}

// NewPayloadEncryptor creates an encryptor from a 32-byte AES-256 key.
func NewPayloadEncryptor(key []byte) (*PayloadEncryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("payload encryptor: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("payload encryptor: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("payload encryptor: create GCM: %w", err)
	}

	return &PayloadEncryptor{aead: aead}, nil
}

// NewPayloadEncryptorFromHex parses a 64-character hex key. An empty key
// returns a nil encryptor and no error: payloads are then stored as plain
// JSON.
func NewPayloadEncryptorFromHex(key string) (*PayloadEncryptor, error) {
	if key == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("HIPAA_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("HIPAA_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(raw))
	}
	return NewPayloadEncryptor(raw)
}

// Seal encrypts data and returns nonce || ciphertext.
func (e *PayloadEncryptor) Seal(data []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("payload seal: generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, data, nil), nil
}

// Open reverses Seal.
func (e *PayloadEncryptor) Open(data []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("payload open: ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("payload open: %w", err)
	}
	return plaintext, nil
}
