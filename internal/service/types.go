// Package service defines the backend-agnostic types and interfaces for task operations.
package service

import (
	"time"

	"golang.org/x/oauth2"
)

// Task represents one row of the tasks table.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the account a session was issued for.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a backend-issued credential. It is passed explicitly to every
// backend call; a nil *Session means the caller is anonymous.
type Session struct {
	User User

	// Token is the token issued at sign-in.
	Token *oauth2.Token

	// Source, when set, yields a fresh token and refreshes it on expiry.
	Source oauth2.TokenSource
}

// AccessToken returns a currently valid access token for the session.
func (s *Session) AccessToken() (string, error) {
	if s == nil {
		return "", nil
	}
	if s.Source != nil {
		tok, err := s.Source.Token()
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}
	if s.Token == nil {
		return "", nil
	}
	return s.Token.AccessToken, nil
}
