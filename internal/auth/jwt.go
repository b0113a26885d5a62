package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types. Access tokens authenticate requests; refresh tokens may only
// be exchanged for a new pair (and are the ones we blacklist on logout).
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongTokenUse = errors.New("token used for the wrong purpose")
)

// TokenPair is what login, register and refresh hand back to the client.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims is the payload carried by both token types. Role travels inside the
// access token so the auth middleware never needs a database round trip.
type Claims struct {
	UserID int64  `json:"-"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens signs and validates the JWT pair for one secret/TTL configuration.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokens builds a signer. TTLs default to 30 minutes for access tokens
// and 7 days for refresh tokens when zero.
func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	if accessTTL == 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// GeneratePair issues a fresh access/refresh pair for a user. Each token gets
// its own jti so refresh tokens can be individually blacklisted.
func (t *Tokens) GeneratePair(userID int64, role string) (TokenPair, error) {
	access, err := t.sign(userID, role, TokenTypeAccess, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(userID, role, TokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (t *Tokens) sign(userID int64, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"typ":  tokenType,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses a token string and enforces the expected token type.
// It returns the claims, including the user ID, role, jti and expiry.
func (t *Tokens) Validate(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	tokenType, _ := mapClaims["typ"].(string)
	if expectedType != "" && tokenType != expectedType {
		return nil, ErrWrongTokenUse
	}

	claims := &Claims{
		UserID: int64(sub),
		Type:   tokenType,
	}
	claims.Role, _ = mapClaims["role"].(string)
	if jti, ok := mapClaims["jti"].(string); ok {
		claims.ID = jti
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = jwt.NewNumericDate(time.Unix(int64(exp), 0))
	}
	return claims, nil
}
