package cryptox

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrEmptyInput    = errors.New("empty input")
	ErrNoPrivateKey  = errors.New("cipher has no private key")
	ErrBadCiphertext = errors.New("malformed ciphertext")
)

// pkcs1Overhead is the PKCS#1 v1.5 padding overhead per block.
const pkcs1Overhead = 11

// RSACipher encrypts arbitrary-length payloads with an RSA key by splitting
// them into modulus-sized blocks. Ciphertexts are the concatenated blocks,
// base64 encoded.
//
// Two directions exist:
//   - EncryptPrivate / DecryptPublic: PKCS#1 v1.5 type 1 blocks produced with
//     the private key. Anyone holding the public key can read them; they
//     prove the payload came from the domain.
//   - EncryptPublic / DecryptPrivate: OAEP (SHA-256) blocks only the domain
//     can read.
type RSACipher struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// NewRSACipher returns a cipher over the given key pair. priv may be nil on
// the requester side, where only the public key is known.
func NewRSACipher(priv *rsa.PrivateKey, pub *rsa.PublicKey) *RSACipher {
	if pub == nil && priv != nil {
		pub = &priv.PublicKey
	}
	return &RSACipher{priv: priv, pub: pub}
}

// EncryptPrivate encrypts plaintext with the private key.
func (c *RSACipher) EncryptPrivate(plaintext []byte) (string, error) {
	if c.priv == nil {
		return "", ErrNoPrivateKey
	}
	if len(plaintext) == 0 {
		return "", ErrEmptyInput
	}

	k := c.priv.Size()
	var out bytes.Buffer
	for _, chunk := range split(plaintext, k-pkcs1Overhead) {
		// hash 0 signs the chunk as-is with type 1 padding
		block, err := rsa.SignPKCS1v15(nil, c.priv, crypto.Hash(0), chunk)
		if err != nil {
			return "", fmt.Errorf("private encrypt: %w", err)
		}
		out.Write(block)
	}
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// DecryptPublic reverses EncryptPrivate using only the public key.
func (c *RSACipher) DecryptPublic(ciphertext string) ([]byte, error) {
	raw, err := c.blocks(ciphertext)
	if err != nil {
		return nil, err
	}

	k := c.pub.Size()
	e := big.NewInt(int64(c.pub.E))
	var out bytes.Buffer
	for off := 0; off < len(raw); off += k {
		m := new(big.Int).SetBytes(raw[off : off+k])
		if m.Cmp(c.pub.N) >= 0 {
			return nil, ErrBadCiphertext
		}
		m.Exp(m, e, c.pub.N)
		em := m.FillBytes(make([]byte, k))

		chunk, err := unpadType1(em)
		if err != nil {
			return nil, err
		}
		out.Write(chunk)
	}
	return out.Bytes(), nil
}

// EncryptPublic encrypts plaintext with the public key using OAEP.
func (c *RSACipher) EncryptPublic(plaintext []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", ErrEmptyInput
	}

	size := c.pub.Size() - 2*sha256.Size - 2
	var out bytes.Buffer
	for _, chunk := range split(plaintext, size) {
		block, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, c.pub, chunk, nil)
		if err != nil {
			return "", fmt.Errorf("public encrypt: %w", err)
		}
		out.Write(block)
	}
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// DecryptPrivate reverses EncryptPublic.
func (c *RSACipher) DecryptPrivate(ciphertext string) ([]byte, error) {
	if c.priv == nil {
		return nil, ErrNoPrivateKey
	}
	raw, err := c.blocks(ciphertext)
	if err != nil {
		return nil, err
	}

	k := c.priv.Size()
	var out bytes.Buffer
	for off := 0; off < len(raw); off += k {
		chunk, err := rsa.DecryptOAEP(sha256.New(), nil, c.priv, raw[off:off+k], nil)
		if err != nil {
			return nil, fmt.Errorf("private decrypt: %w", err)
		}
		out.Write(chunk)
	}
	return out.Bytes(), nil
}

func (c *RSACipher) blocks(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCiphertext, err)
	}
	if len(raw) == 0 || len(raw)%c.pub.Size() != 0 {
		return nil, ErrBadCiphertext
	}
	return raw, nil
}

// unpadType1 strips 0x00 0x01 FF..FF 0x00 from a decrypted block.
func unpadType1(em []byte) ([]byte, error) {
	if len(em) < pkcs1Overhead || em[0] != 0x00 || em[1] != 0x01 {
		return nil, ErrBadCiphertext
	}
	i := 2
	for i < len(em) && em[i] == 0xff {
		i++
	}
	if i-2 < 8 || i >= len(em) || em[i] != 0x00 {
		return nil, ErrBadCiphertext
	}
	return em[i+1:], nil
}

func split(b []byte, size int) [][]byte {
	var chunks [][]byte
	for len(b) > size {
		chunks = append(chunks, b[:size])
		b = b[size:]
	}
	return append(chunks, b)
}
