// Package auth signs and verifies the domain's identity tokens: RS256 JWTs
// whose issuer is the uid of a user or service and whose identity claim
// embeds the issuing record.
package auth

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the embedded issuer record.
type Claims struct {
	jwt.RegisteredClaims
	Identity models.Identity `json:"identity"`
}

// GenerateToken signs a token for identity that expires after ttl.
func GenerateToken(identity models.Identity, signer *rsa.PrivateKey, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    identity.UID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Identity: identity,
	})

	return token.SignedString(signer)
}

// ParseToken verifies tokenString against verifier and returns its claims.
// Every failure, including an expired token or a token without an embedded
// identity, is reported as common.ErrInvalidToken wrapping the cause.
func ParseToken(tokenString string, verifier *rsa.PublicKey) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return verifier, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Identity.UID() == "" || claims.Identity.UID() != claims.Issuer {
		return nil, errors.Join(common.ErrInvalidToken, errors.New("issuer does not match identity"))
	}

	return claims, nil
}
