package models

import (
	"time"
)

// Service the token is issued for. Every audience has own signing keys and cookies
type Audience string

const (
	AudienceUser Audience = "user"
	AudienceBlog Audience = "blog"
)

// Audiences in the order tokens are issued
var Audiences = []Audience{AudienceUser, AudienceBlog}

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// One of four token kinds: user-access, user-refresh, blog-access, blog-refresh
type TokenKind struct {
	Audience Audience
	Type     TokenType
}

func (k TokenKind) String() string {
	return string(k.Audience) + "-" + string(k.Type)
}

func AccessKind(aud Audience) TokenKind  { return TokenKind{Audience: aud, Type: TokenAccess} }
func RefreshKind(aud Audience) TokenKind { return TokenKind{Audience: aud, Type: TokenRefresh} }

// All token kinds: access and refresh for every audience
func TokenKinds() []TokenKind {
	kinds := make([]TokenKind, 0, 2*len(Audiences))
	for _, aud := range Audiences {
		kinds = append(kinds, AccessKind(aud), RefreshKind(aud))
	}
	return kinds
}

type IssuedToken struct {
	Kind      TokenKind
	Value     string
	ExpiresAt time.Time
}

// Token pair issued for one audience
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Token pairs issued for every audience at login or rotation
type Tokens map[Audience]TokenPair

// Flatten tokens in stable order (audience order, access before refresh)
func (t Tokens) List() []IssuedToken {
	list := make([]IssuedToken, 0, 2*len(t))
	for _, aud := range Audiences {
		pair, ok := t[aud]
		if !ok {
			continue
		}
		list = append(list, pair.Access, pair.Refresh)
	}
	return list
}
