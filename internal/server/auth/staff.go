// Package auth authenticates staff users and issues their access tokens.
package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/server/config"
)

// dummyHash keeps unknown usernames as slow as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

// Service checks staff credentials against configured bcrypt hashes.
type Service struct {
	accounts map[string][]byte
	secret   []byte
	validity time.Duration
}

func NewService(accounts []config.StaffAccount, secretKey string, validity time.Duration) *Service {
	m := make(map[string][]byte, len(accounts))
	for _, a := range accounts {
		m[a.Username] = []byte(a.PasswordHash)
	}
	return &Service{accounts: m, secret: []byte(secretKey), validity: validity}
}

// Login returns a signed access token for valid credentials.
func (s *Service) Login(_ context.Context, username, password string) (string, error) {
	hash, ok := s.accounts[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", common.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}
	return GenerateToken(username, s.secret, s.validity)
}

// Authenticate returns the username carried by a valid token.
func (s *Service) Authenticate(token string) (string, error) {
	return GetUsernameFromToken(token, s.secret)
}

// HashPassword produces a hash suitable for config.StaffAccount.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
