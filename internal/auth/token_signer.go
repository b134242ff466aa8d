package auth

import (
	"errors"
	"fmt"
	"time"

	"multipark/backoffice/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSigner issues and validates HS256 bearer tokens carrying a role claim
type TokenSigner struct {
	secretKey []byte
}

// NewTokenSigner returns nil for an empty secret, which disables bearer auth
func NewTokenSigner(secret string) *TokenSigner {
	if secret == "" {
		return nil
	}
	return &TokenSigner{secretKey: []byte(secret)}
}

// Issue signs a token for subject with the given role
func (s *TokenSigner) Issue(subject string, role constants.APIRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"jti":  uuid.New().String(),
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses a token and returns its claims. Expiry is checked by the parser.
func (s *TokenSigner) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	role, ok := (*claims)["role"].(string)
	if !ok {
		return nil, errors.New("missing or invalid role claim")
	}
	apiRole := constants.APIRole(role)
	if apiRole != constants.RoleAnon && apiRole != constants.RoleService {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	subject, _ := (*claims)["sub"].(string)

	return &Claims{
		Subject: subject,
		Role:    apiRole,
		Source:  SourceJWT,
	}, nil
}
