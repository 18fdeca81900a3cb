package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signerIssuer = "legal-translator/storage"

// Grant is what a signed URL allows.
type Grant struct {
	Bucket       string   `json:"bkt"`
	Path         string   `json:"path"`
	Mode         SignMode `json:"mode"`
	DownloadName string   `json:"dn,omitempty"`
}

type grantClaims struct {
	Grant
	jwt.RegisteredClaims
}

// Signer issues and checks HS256 tokens for blob access.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

func (s *Signer) Sign(g Grant, ttl time.Duration) (string, error) {
	if !g.Mode.Valid() {
		return "", fmt.Errorf("invalid sign mode %q", g.Mode)
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	now := s.now()
	claims := grantClaims{
		Grant: g,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    signerIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses token and returns its grant when the signature and expiry hold.
func (s *Signer) Verify(token string) (Grant, error) {
	var claims grantClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signerIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Grant{}, err
	}
	if !parsed.Valid {
		return Grant{}, errors.New("invalid token")
	}
	return claims.Grant, nil
}
