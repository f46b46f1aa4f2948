package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
)

// Client side storage for tokens (e.g. cookies of http response)
type CarrierSink interface {
	Set(c models.Carrier, value string, expiresAt time.Time) error
	Clear(c models.Carrier) error
}

// Carrier for every token kind: '<audience>_<type>_token' scoped to '/<audience>' path
func DefaultCarriers(domain string) map[models.TokenKind]models.Carrier {
	carriers := make(map[models.TokenKind]models.Carrier)
	for _, kind := range models.TokenKinds() {
		carriers[kind] = models.Carrier{
			Name:   fmt.Sprintf("%s_%s_token", kind.Audience, kind.Type),
			Path:   "/" + string(kind.Audience),
			Domain: domain,
		}
	}
	return carriers
}

func (s *AuthService) Carrier(kind models.TokenKind) models.Carrier {
	return s.carriers[kind]
}

// Put every token into its carrier
// All tokens are tried even if some fail; failures are joined
func (s *AuthService) SetCarriers(sink CarrierSink, tokens models.Tokens) error {
	var errs []error
	for _, token := range tokens.List() {
		c := s.carriers[token.Kind]
		if err := sink.Set(c, token.Value, token.ExpiresAt); err != nil {
			errs = append(errs, fmt.Errorf("%w: set %s: %w", apperrors.ErrCarrier, c.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Clear carriers of every audience, so client never keeps part of stale session
func (s *AuthService) ClearCarriers(sink CarrierSink) error {
	var errs []error
	for _, kind := range models.TokenKinds() {
		c := s.carriers[kind]
		if err := sink.Clear(c); err != nil {
			errs = append(errs, fmt.Errorf("%w: clear %s: %w", apperrors.ErrCarrier, c.Name, err))
		}
	}
	return errors.Join(errs...)
}
