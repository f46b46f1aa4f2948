package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/metrics"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/service/auth/tokenmanager"
)

// Outcome of request authentication
type State int

const (
	Unauthenticated State = iota
	AccessValid
	AccessExpiredRefreshValid
	BothExpiredOrInvalid
	SessionMismatch
)

func (s State) String() string {
	switch s {
	case AccessValid:
		return "access_valid"
	case AccessExpiredRefreshValid:
		return "rotated"
	case BothExpiredOrInvalid:
		return "both_expired"
	case SessionMismatch:
		return "session_mismatch"
	default:
		return "unauthenticated"
	}
}

type Resolution struct {
	State State
	User  models.User

	// Tokens issued for the new epoch if access token was rotated
	Rotated models.Tokens
}

// What a presented token turned out to be
type presented int

const (
	absent presented = iota
	valid
	expired
	invalid
)

type decoded struct {
	claims tokenmanager.Claims
	is     presented
	err    error
}

func decode(m *tokenmanager.TokenManager, token string) decoded {
	if token == "" {
		return decoded{is: absent}
	}

	claims, err := m.Decode(token)
	switch {
	case err == nil:
		return decoded{claims: claims, is: valid}
	case errors.Is(err, apperrors.ErrTokenExpired):
		return decoded{claims: claims, is: expired, err: err}
	default:
		return decoded{is: invalid, err: err}
	}
}

// Resolve current user of the audience from access and refresh tokens the client presented
//
// Valid access token is trusted within its short lifetime: the user is returned as is.
// Expired or absent access token is rotated with valid refresh token if the refresh token
// belongs to the current session epoch: the epoch is bumped, fresh tokens for every audience are
// written to the sink. Refresh token of a stale epoch bumps the epoch anyway and fails
// with apperrors.ErrSessionMismatch.
//
// Every authentication failure wraps apperrors.ErrNotAuthenticated and clears all carriers.
// Carrier clearing failure is joined to the returned error.
func (s *AuthService) Resolve(ctx context.Context, aud models.Audience, accessToken string, refreshToken string, sink CarrierSink) (Resolution, error) {
	res, err := s.resolve(ctx, aud, accessToken, refreshToken, sink)

	switch {
	case err == nil:
		s.metrics.AuthEvent(metrics.EventResolve, res.State.String())
	case apperrors.IsAuthFailure(err):
		s.metrics.AuthEvent(metrics.EventResolve, res.State.String())
		s.logger.Debug("request not authenticated", "audience", aud, "state", res.State, "error", err)
	default:
		s.metrics.AuthEvent(metrics.EventResolve, "error")
		s.logger.Error("request authentication failed", "audience", aud, "error", err)
	}

	return res, err
}

func (s *AuthService) resolve(ctx context.Context, aud models.Audience, accessToken string, refreshToken string, sink CarrierSink) (Resolution, error) {
	access := decode(s.keyring.Access(aud), accessToken)
	refresh := decode(s.keyring.Refresh(aud), refreshToken)

	// Tampered or foreign token is rejected outright, whatever the other one is
	for _, d := range []decoded{access, refresh} {
		if d.is == invalid {
			return s.reject(sink, Unauthenticated, d.err)
		}
	}

	if refresh.is != valid {
		switch {
		case access.is == absent && refresh.is == absent:
			return s.reject(sink, Unauthenticated, errors.New("no tokens presented"))
		case access.is != valid:
			return s.reject(sink, BothExpiredOrInvalid, errors.Join(access.err, refresh.err))
		case refresh.is == absent:
			return s.reject(sink, Unauthenticated, errors.New("refresh token is absent"))
		default:
			return s.reject(sink, Unauthenticated, refresh.err)
		}
	}

	if access.is != absent && access.claims.UserID != refresh.claims.UserID {
		return s.reject(sink, Unauthenticated, fmt.Errorf("%w: access and refresh tokens belong to different users", apperrors.ErrTokenInvalid))
	}

	if access.is == valid {
		user, err := s.storage.User().GetUserByID(ctx, access.claims.UserID)
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			return s.reject(sink, Unauthenticated, err)
		case err != nil:
			return Resolution{}, err
		}
		return Resolution{State: AccessValid, User: user}, nil
	}

	return s.rotate(ctx, refresh.claims, sink)
}

// Access token is expired or absent, refresh token is valid
func (s *AuthService) rotate(ctx context.Context, refresh tokenmanager.Claims, sink CarrierSink) (Resolution, error) {
	var tokens models.Tokens

	user, err := s.sessions.Rotate(ctx, refresh.UserID, refresh.SessionID, func(u models.User) (issueErr error) {
		tokens, issueErr = s.keyring.IssueAll(tokenmanager.PayloadOf(u))
		return issueErr
	})

	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrSessionMismatch):
		// Epoch is already bumped by the session store; bump failure (if any) is in err
		s.logger.Warn("stale refresh token presented, session invalidated", "user_id", refresh.UserID, "error", err)
		return s.reject(sink, SessionMismatch, err)
	case errors.Is(err, apperrors.ErrUserNotFound):
		return s.reject(sink, Unauthenticated, err)
	default:
		return Resolution{}, err
	}

	res := Resolution{State: AccessExpiredRefreshValid, User: user, Rotated: tokens}
	if err := s.SetCarriers(sink, tokens); err != nil {
		return res, err
	}

	s.logger.Info("session rotated", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) reject(sink CarrierSink, state State, cause error) (Resolution, error) {
	clearErr := s.ClearCarriers(sink)
	err := fmt.Errorf("%w: %s: %w", apperrors.ErrNotAuthenticated, state, cause)

	return Resolution{State: state}, errors.Join(err, clearErr)
}
