package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"registration-backend/utils"

	"github.com/google/uuid"
)

var ErrExpired = errors.New("token has expired")

// Payload identifies the console operator a token was issued to.
type Payload struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

func NewPayload(email string, duration time.Duration) (*Payload, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	issuedAt := utils.Now()
	expiredAt := issuedAt.Add(duration)

	payload := &Payload{
		ID:        tokenID,
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiredAt: expiredAt,
	}
	return payload, nil
}

// Valid rejects payloads without an operator email and expired payloads.
func (payload *Payload) Valid() error {
	if strings.TrimSpace(payload.Email) == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	if utils.Now().After(payload.ExpiredAt) {
		return ErrExpired
	}
	return nil
}

func (p *Payload) String() string {
	return fmt.Sprintf("ID: %s, Email: %s, IssuedAt: %s, ExpiredAt: %s", p.ID, p.Email, p.IssuedAt, p.ExpiredAt)
}
