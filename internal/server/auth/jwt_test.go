package auth

import (
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/cryptox"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyOnce sync.Once
	keyA    *rsa.PrivateKey
	keyB    *rsa.PrivateKey
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		gen := func() *rsa.PrivateKey {
			privPEM, _, err := cryptox.GenerateKeyPair(cryptox.DomainKeyBits)
			if err != nil {
				panic(err)
			}
			k, err := cryptox.ParsePrivateKeyPEM(privPEM)
			if err != nil {
				panic(err)
			}
			return k
		}
		keyA, keyB = gen(), gen()
	})
	return keyA, keyB
}

func userIdentity() models.Identity {
	return models.Identity{User: models.NewUserRecord("0", models.NewUser{Username: "root", Email: "root@acme.io"}, "super")}
}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()
	key, _ := testKeys(t)
	identity := userIdentity()

	tok, err := GenerateToken(identity, key, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, &key.PublicKey)
	require.NoError(t, err)

	assert.Equal(t, "0", claims.Issuer)
	assert.Equal(t, identity, claims.Identity)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGenerateAndParse_ServiceIdentity(t *testing.T) {
	t.Parallel()
	key, _ := testKeys(t)
	svc := models.NewServiceRecord("billing", "0", "1.0.0", "", time.Now())

	tok, err := GenerateToken(models.Identity{Service: svc}, key, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(tok, &key.PublicKey)
	require.NoError(t, err)
	require.NotNil(t, claims.Identity.Service)
	assert.Nil(t, claims.Identity.User)
	assert.Equal(t, "billing", claims.Identity.UID())
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()
	key, _ := testKeys(t)

	tok, err := GenerateToken(userIdentity(), key, -1*time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, &key.PublicKey)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseToken_WrongKey(t *testing.T) {
	t.Parallel()
	key, other := testKeys(t)

	tok, err := GenerateToken(userIdentity(), key, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, &other.PublicKey)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseToken_RejectsHMAC(t *testing.T) {
	t.Parallel()
	key, _ := testKeys(t)

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "0",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Identity: userIdentity(),
	})
	tok, err := hs.SignedString([]byte("guessable"))
	require.NoError(t, err)

	_, err = ParseToken(tok, &key.PublicKey)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseToken_IssuerMustMatchIdentity(t *testing.T) {
	t.Parallel()
	key, _ := testKeys(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "billing",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Identity: userIdentity(),
	})
	tok, err := forged.SignedString(key)
	require.NoError(t, err)

	_, err = ParseToken(tok, &key.PublicKey)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()
	key, _ := testKeys(t)

	_, err := ParseToken("not.a.jwt", &key.PublicKey)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}
