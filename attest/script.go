// Package attest is the requester side of the service challenge handshake.
// A service that wants a token receives an encrypted challenge script, runs
// it against its own source tree with a Responder, and returns the
// encrypted result.
package attest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Report field names, in the order a Result carries them.
const (
	FieldVersion     = "version"
	FieldSrc         = "src"
	FieldChallenge   = "challenge"
	FieldServiceName = "serviceName"
)

var (
	ErrEmptyScript   = errors.New("empty challenge script")
	ErrInvalidScript = errors.New("invalid challenge script")
)

// ReportFields is the report section of a service challenge.
var ReportFields = []string{FieldVersion, FieldSrc, FieldChallenge, FieldServiceName}

// Script is a challenge script. Paths are relative to the requester's root.
type Script struct {
	Kind           string   `yaml:"kind"`
	Salt           string   `yaml:"salt"`
	Manifest       string   `yaml:"manifest"`
	Sources        []string `yaml:"sources,flow"`
	TrustedLibrary string   `yaml:"trusted_library"`
	Report         []string `yaml:"report,flow"`
}

// Parse decodes text strictly: unknown keys and trailing documents are
// errors.
func Parse(text string) (*Script, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyScript
	}

	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("%w: more than one document", ErrInvalidScript)
	}
	if s.Kind == "" {
		return nil, fmt.Errorf("%w: kind is required", ErrInvalidScript)
	}
	return &s, nil
}

// Encode renders s in canonical form.
func (s *Script) Encode() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Canonicalize normalizes text so comments, indentation, quoting and
// flow or block style do not change its checksum.
func Canonicalize(text string) (string, error) {
	s, err := Parse(text)
	if err != nil {
		return "", err
	}
	return s.Encode()
}

// Checksum is the hex BLAKE3-256 digest of text.
func Checksum(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
