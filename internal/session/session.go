// Package session keeps the connected user's record in the client's cookie jar.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Key is the cookie the user record is stored under
const Key = "user"

const (
	TypeEmployee = "Employee"
	TypeAdmin    = "Admin"
)

// ErrNoSession is returned when the request carries no usable user record
var ErrNoSession = errors.New("no user session")

// User is the connected user
type User struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// IsAdmin reports whether the user sees every employee's bills
func (u User) IsAdmin() bool {
	return u.Type == TypeAdmin
}

// Encode serializes u to a cookie-safe value
func Encode(u User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("marshaling user: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a value produced by Encode
func Decode(value string) (User, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if u.Email == "" {
		return User{}, fmt.Errorf("%w: missing email", ErrNoSession)
	}
	if u.Type != TypeEmployee && u.Type != TypeAdmin {
		return User{}, fmt.Errorf("%w: unknown type %q", ErrNoSession, u.Type)
	}
	return u, nil
}

// Load reads the user record from the request
func Load(r *http.Request) (User, error) {
	c, err := r.Cookie(Key)
	if err != nil {
		return User{}, ErrNoSession
	}
	return Decode(c.Value)
}

// Save stores u on the response
func Save(w http.ResponseWriter, u User) error {
	value, err := Encode(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Key,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes the user record
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   Key,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
