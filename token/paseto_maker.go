package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidToken covers tokens that fail decryption or carry no subject.
var ErrInvalidToken = errors.New("token is invalid")

// PasetoMaker issues and verifies v2.local tokens sealed with the key shared
// with the console auth service.
type PasetoMaker struct {
	v2  *paseto.V2
	key []byte
}

func NewPasetoMaker(symmetricKey string) (Maker, error) {
	if len(symmetricKey) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be exactly %d characters", chacha20poly1305.KeySize)
	}
	return &PasetoMaker{v2: paseto.NewV2(), key: []byte(symmetricKey)}, nil
}

// CreateToken seals a payload for email. Used when a refresh token is rotated.
func (m *PasetoMaker) CreateToken(email string, duration time.Duration) (string, error) {
	payload, err := NewPayload(email, duration)
	if err != nil {
		return "", fmt.Errorf("failed to create token payload: %w", err)
	}
	return m.seal(payload)
}

func (m *PasetoMaker) seal(payload *Payload) (string, error) {
	sealed, err := m.v2.Encrypt(m.key, payload, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt token: %w", err)
	}
	return sealed, nil
}

// VerifyToken opens token and returns its payload. Errors wrap ErrInvalidToken
// or ErrExpired.
func (m *PasetoMaker) VerifyToken(token string) (*Payload, error) {
	payload := &Payload{}
	if err := m.v2.Decrypt(token, m.key, payload, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := payload.Valid(); err != nil {
		return nil, err
	}
	return payload, nil
}
