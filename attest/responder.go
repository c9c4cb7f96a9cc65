package attest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/trustkeeper/internal/cryptox"
)

// Result is what a requester reports after running a challenge.
type Result struct {
	Version     string `json:"version"`
	Src         string `json:"src"`
	Challenge   string `json:"challenge"`
	ServiceName string `json:"serviceName"`
}

// Responder answers service challenges for the service Name whose code is
// rooted at Root.
type Responder struct {
	Name   string
	Root   string
	cipher *cryptox.RSACipher
}

// NewResponder returns a responder that trusts the domain public key in
// publicKeyPEM.
func NewResponder(name, root string, publicKeyPEM []byte) (*Responder, error) {
	pub, err := cryptox.ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	return &Responder{Name: name, Root: root, cipher: cryptox.NewRSACipher(nil, pub)}, nil
}

// Open decrypts a challenge issued by the domain. Only the holder of the
// domain private key can produce a ciphertext that opens.
func (r *Responder) Open(ciphertext string) (string, error) {
	text, err := r.cipher.DecryptPublic(ciphertext)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// Run executes the challenge script text against the responder's tree.
func (r *Responder) Run(text string) (*Result, error) {
	script, err := Parse(text)
	if err != nil {
		return nil, err
	}

	version, err := readVersion(filepath.Join(r.Root, filepath.FromSlash(script.Manifest)))
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	paths := make([]string, 0, len(script.Sources)+2)
	paths = append(paths, script.Manifest)
	paths = append(paths, script.Sources...)
	if script.TrustedLibrary != "" {
		paths = append(paths, script.TrustedLibrary)
	}

	sums := make([]string, 0, len(paths))
	for _, p := range paths {
		sum, err := HashTree(r.Root, p)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", p, err)
		}
		sums = append(sums, sum)
	}

	return &Result{
		Version:     version,
		Src:         Checksum(strings.Join(sums, "")),
		Challenge:   Checksum(text),
		ServiceName: r.Name,
	}, nil
}

// Respond opens the challenge, runs it and returns the result encrypted for
// the domain.
func (r *Responder) Respond(ciphertext string) (string, error) {
	text, err := r.Open(ciphertext)
	if err != nil {
		return "", err
	}
	result, err := r.Run(text)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return r.cipher.EncryptPublic(payload)
}
