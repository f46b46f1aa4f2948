// Package cookies keeps tokens in HttpOnly cookies.
package cookies

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/quill/internal/models"
)

// Cookie settings shared by all carriers
type Jar struct {
	// Send cookies over https only
	Secure bool
}

// Token from request cookie; empty string if client has no such cookie
func (j Jar) Read(r *http.Request, c models.Carrier) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Sink that writes cookies to response headers
// Must be used before response header is written
func (j Jar) Sink(w http.ResponseWriter) *Sink {
	return &Sink{w: w, secure: j.Secure}
}

type Sink struct {
	w      http.ResponseWriter
	secure bool
}

func (s *Sink) Set(c models.Carrier, value string, expiresAt time.Time) error {
	return s.put(&http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  expiresAt.UTC(),
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sink) Clear(c models.Carrier) error {
	return s.put(&http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Add cookie to response replacing the one with the same name and scope set before
func (s *Sink) put(cookie *http.Cookie) error {
	if err := cookie.Valid(); err != nil {
		return fmt.Errorf("cookie %q: %w", cookie.Name, err)
	}

	h := s.w.Header()
	var kept []string
	for _, line := range h.Values("Set-Cookie") {
		prev, err := http.ParseSetCookie(line)
		if err == nil && prev.Name == cookie.Name && prev.Path == cookie.Path && prev.Domain == cookie.Domain {
			continue
		}
		kept = append(kept, line)
	}

	h.Del("Set-Cookie")
	for _, line := range kept {
		h.Add("Set-Cookie", line)
	}
	h.Add("Set-Cookie", cookie.String())

	return nil
}
