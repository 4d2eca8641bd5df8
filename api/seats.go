package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const seatIssuer = "shanghai-tycoon"

var (
	ErrInvalidSeatToken = errors.New("invalid seat token")
	ErrMissingSeatToken = errors.New("seat token required")
)

// SeatClaims binds a bearer to one player seat of one session
type SeatClaims struct {
	SessionID string `json:"sid"`
	PlayerID  int    `json:"pid"`
	jwt.RegisteredClaims
}

// SeatIssuer signs and verifies HS256 seat tokens handed to the external
// player when a session is created.
type SeatIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSeatIssuer creates an issuer. A zero ttl issues tokens that never expire.
func NewSeatIssuer(secret string, ttl time.Duration) (*SeatIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("seat secret cannot be empty")
	}
	return &SeatIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for the given seat
func (s *SeatIssuer) Issue(sessionID string, playerID int) (string, error) {
	now := s.now()
	claims := SeatClaims{
		SessionID: strings.ToLower(sessionID),
		PlayerID:  playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   seatIssuer,
			Subject:  fmt.Sprintf("%s/%d", strings.ToLower(sessionID), playerID),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses a token and checks its signature, issuer and expiry
func (s *SeatIssuer) Verify(tokenString string) (*SeatClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SeatClaims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(seatIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeatToken, err)
	}
	claims, ok := token.Claims.(*SeatClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSeatToken
	}
	return claims, nil
}

// bearerToken extracts the token from an Authorization header
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingSeatToken
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: expected a Bearer token", ErrInvalidSeatToken)
	}
	return strings.TrimSpace(token), nil
}
