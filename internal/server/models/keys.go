package models

import (
	"crypto/rsa"

	"github.com/dmitrijs2005/trustkeeper/attest"
	"github.com/dmitrijs2005/trustkeeper/internal/cryptox"
)

// DomainKeys is the loaded domain key pair. Signer and Verifier serve token
// signing; Cipher is the raw key object used for payload transport.
type DomainKeys struct {
	Signer    *rsa.PrivateKey
	Verifier  *rsa.PublicKey
	Cipher    *cryptox.RSACipher
	PublicPEM string
}

// ChallengeResult is what a requester reports after running a challenge.
type ChallengeResult = attest.Result
