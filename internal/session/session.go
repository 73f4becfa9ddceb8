package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	// CookieName is the session cookie Domestika uses for authenticated pages.
	CookieName = "_domestika_session"

	// CookieDomain is the scope the credential is applied to.
	CookieDomain = "www.domestika.org"
)

// ErrNoSessionCookie is reported by Credential.Validate when the cookie
// file did not contain a usable session value.
var ErrNoSessionCookie = errors.New("session cookie " + CookieName + " not found or empty")

// ConfigError is returned when the cookie file is missing or unreadable.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cookie file %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Credential is the session cookie applied to every browser session.
// It is read-only after LoadSession and safe to share between sessions.
type Credential struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
}

// Validate reports ErrNoSessionCookie when the credential has no value.
func (c *Credential) Validate() error {
	if c == nil || c.Value == "" {
		return ErrNoSessionCookie
	}
	return nil
}

// cookieRecord is one entry of a JSON cookie export.
type cookieRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadSession reads a cookie export and returns the session credential.
//
// A missing file or content that is neither a JSON cookie array nor a
// Netscape cookies.txt yields a *ConfigError. A readable file without the
// session cookie is not an error; the credential value is left empty.
func LoadSession(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	value, err := findSessionValue(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	return NewCredential(value), nil
}

// NewCredential builds the credential with the fixed Domestika scope.
func NewCredential(value string) *Credential {
	return &Credential{
		Name:   CookieName,
		Value:  value,
		Domain: CookieDomain,
		Path:   "/",
		Secure: true,
	}
}

func findSessionValue(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []cookieRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return "", fmt.Errorf("invalid JSON cookie export: %w", err)
		}
		for _, r := range records {
			if r.Name == CookieName {
				return r.Value, nil
			}
		}
		return "", nil
	}

	records, err := parseNetscape(trimmed)
	if err != nil {
		return "", err
	}
	for _, r := range records {
		if r.Name == CookieName {
			return r.Value, nil
		}
	}
	return "", nil
}
