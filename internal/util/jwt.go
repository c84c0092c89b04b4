package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/njprem/lighthouse-api/internal/domain"
)

const (
	DefaultSessionTTL    = 30 * 24 * time.Hour
	DefaultSessionIssuer = "lighthouse-api"
)

var (
	ErrSessionMalformed = errors.New("session token is malformed")
	ErrSessionClaims    = errors.New("session token is missing required claims")
)

// Claims is the wire form of a domain.SessionClaim.
type Claims struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Picture  *string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// UnmarshalJSON rejects members that are not part of the claim set.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type plain Claims
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var out plain
	if err := dec.Decode(&out); err != nil {
		return err
	}
	*c = Claims(out)
	return nil
}

type SessionOption func(*SessionManager)

func WithSessionIssuer(issuer string) SessionOption {
	return func(m *SessionManager) {
		if strings.TrimSpace(issuer) != "" {
			m.issuer = strings.TrimSpace(issuer)
		}
	}
}

// WithSessionClock overrides the time source used to stamp and validate tokens.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// SessionManager issues and resolves stateless HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, opts ...SessionOption) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	m := &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: DefaultSessionIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) Issue(claim domain.SessionClaim) (string, time.Time, error) {
	if claim.AccountID == uuid.Nil || strings.TrimSpace(claim.Username) == "" {
		return "", time.Time{}, ErrSessionClaims
	}
	issuedAt := m.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(m.ttl)
	name := claim.DisplayName
	if strings.TrimSpace(name) == "" {
		name = claim.Username
	}
	claims := Claims{
		Username: claim.Username,
		Name:     name,
		Picture:  claim.ProfileImageURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.AccountID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies tokenString and decodes its claim.
func (m *SessionManager) Parse(tokenString string) (*domain.SessionClaim, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrSessionMalformed
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil || accountID == uuid.Nil {
		return nil, ErrSessionClaims
	}
	if strings.TrimSpace(claims.Username) == "" || strings.TrimSpace(claims.Name) == "" || claims.IssuedAt == nil {
		return nil, ErrSessionClaims
	}
	return &domain.SessionClaim{
		AccountID:       accountID,
		Username:        claims.Username,
		DisplayName:     claims.Name,
		ProfileImageURL: claims.Picture,
		IssuedAt:        claims.IssuedAt.Time,
		ExpiresAt:       claims.ExpiresAt.Time,
	}, nil
}

// Resolve is Parse that fails closed: any problem with the token yields nil.
func (m *SessionManager) Resolve(tokenString string) *domain.SessionClaim {
	claim, err := m.Parse(tokenString)
	if err != nil {
		return nil
	}
	return claim
}
