package auth

import (
	"encoding/hex"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/models"
)

const (
	tokenIssuer   = constants.AppName
	tokenAudience = constants.AppName + "-cli"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32
	keyHexSize   = 64
)

// Claims are the session claims sealed into a token.
type Claims struct {
	UID       string
	Email     string
	ExpiresAt time.Time
}

// TokenService seals and opens PASETO v4.local session tokens.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
	now          func() time.Time
}

// NewTokenService creates a token service from a 64-character hex key.
func NewTokenService(keyHex string, ttl time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("session key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for session key: %w", err)
	}
	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create session key: %w", err)
	}
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &TokenService{symmetricKey: key, ttl: ttl, now: time.Now}, nil
}

// Issue creates an encrypted session token for p.
func (s *TokenService) Issue(p models.Profile) string {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(p.UID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.ttl))
	token.SetJti(uuid.NewString())

	// Set only errors on values that cannot be JSON encoded
	_ = token.Set("email", p.Email)

	return token.V4Encrypt(s.symmetricKey, nil)
}

// Verify decrypts tokenString and checks its issuer, audience and validity window.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}

	var claims Claims
	if claims.UID, err = token.GetSubject(); err != nil {
		return Claims{}, fmt.Errorf("invalid token subject: %w", err)
	}
	if claims.Email, err = token.GetString("email"); err != nil {
		return Claims{}, fmt.Errorf("invalid token email: %w", err)
	}
	if claims.ExpiresAt, err = token.GetExpiration(); err != nil {
		return Claims{}, fmt.Errorf("invalid token expiration: %w", err)
	}
	return claims, nil
}

// TTL returns the configured session lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
