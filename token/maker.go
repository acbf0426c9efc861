package token

import "time"

// Maker creates and verifies access tokens.
type Maker interface {
	CreateToken(email string, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}
