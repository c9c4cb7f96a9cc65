package attest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/trustkeeper/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockScript = `# issued by the trust core
kind: service
salt: "abc123"
manifest: VERSION
sources:
  - go.mod
  - internal
trusted_library: vendor/lib
report: [version, src, challenge, serviceName]
`

const flowScript = `{kind: 'service', salt: abc123, manifest: "VERSION",
    sources: [go.mod, internal], trusted_library: vendor/lib,
    report: [version, src, challenge, serviceName]}`

func TestCanonicalize_FormattingInsensitive(t *testing.T) {
	a, err := Canonicalize(blockScript)
	require.NoError(t, err)
	b, err := Canonicalize(flowScript)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, Checksum(a), Checksum(b))

	again, err := Canonicalize(a)
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestCanonicalize_ContentSensitive(t *testing.T) {
	a, err := Canonicalize(blockScript)
	require.NoError(t, err)
	b, err := Canonicalize(`{kind: service, salt: other, manifest: VERSION}`)
	require.NoError(t, err)
	assert.NotEqual(t, Checksum(a), Checksum(b))
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":         "   \n",
		"not yaml":      "kind: [",
		"unknown field": "kind: service\nexec: rm -rf /\n",
		"missing kind":  "salt: abc\n",
		"two documents": "kind: service\n---\nkind: service\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			assert.Error(t, err)
		})
	}
}

func TestChecksum(t *testing.T) {
	sum := Checksum("kind: service\n")
	assert.Len(t, sum, 64)
	assert.Equal(t, sum, Checksum("kind: service\n"))
	assert.NotEqual(t, sum, Checksum("kind: device\n"))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func serviceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "VERSION", "\n1.4.2\n")
	writeFile(t, root, "go.mod", "module example.com/billing\n")
	writeFile(t, root, "internal/a.go", "package a\n")
	writeFile(t, root, "internal/sub/b.go", "package sub\n")
	writeFile(t, root, "vendor/lib/lib.go", "package lib\n")
	return root
}

func TestHashTree(t *testing.T) {
	root := serviceTree(t)

	first, err := HashTree(root, "internal")
	require.NoError(t, err)
	second, err := HashTree(root, "internal")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	writeFile(t, root, "internal/sub/b.go", "package sub // changed\n")
	changed, err := HashTree(root, "internal")
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	require.NoError(t, os.Rename(filepath.Join(root, "internal", "a.go"), filepath.Join(root, "internal", "c.go")))
	renamed, err := HashTree(root, "internal")
	require.NoError(t, err)
	assert.NotEqual(t, changed, renamed)

	_, err = HashTree(root, "missing")
	assert.Error(t, err)
}

func newResponder(t *testing.T, root string) (*Responder, *cryptox.RSACipher) {
	t.Helper()
	privPEM, pubPEM, err := cryptox.GenerateKeyPair(2048)
	require.NoError(t, err)
	priv, err := cryptox.ParsePrivateKeyPEM(privPEM)
	require.NoError(t, err)

	r, err := NewResponder("billing", root, pubPEM)
	require.NoError(t, err)
	return r, cryptox.NewRSACipher(priv, nil)
}

func TestResponder_Run(t *testing.T) {
	root := serviceTree(t)
	r, _ := newResponder(t, root)

	text, err := Canonicalize(blockScript)
	require.NoError(t, err)

	result, err := r.Run(text)
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", result.Version)
	assert.Equal(t, "billing", result.ServiceName)
	assert.Equal(t, Checksum(text), result.Challenge)
	assert.Len(t, result.Src, 64)

	again, err := r.Run(text)
	require.NoError(t, err)
	assert.Equal(t, result.Src, again.Src)

	writeFile(t, root, "vendor/lib/lib.go", "package lib // patched\n")
	patched, err := r.Run(text)
	require.NoError(t, err)
	assert.NotEqual(t, result.Src, patched.Src)
}

func TestResponder_RunMissingSource(t *testing.T) {
	root := serviceTree(t)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "vendor")))
	r, _ := newResponder(t, root)

	_, err := r.Run(blockScript)
	assert.Error(t, err)
}

func TestResponder_Respond(t *testing.T) {
	root := serviceTree(t)
	r, domain := newResponder(t, root)

	text, err := Canonicalize(blockScript)
	require.NoError(t, err)
	challenge, err := domain.EncryptPrivate([]byte(text))
	require.NoError(t, err)

	opened, err := r.Open(challenge)
	require.NoError(t, err)
	assert.Equal(t, text, opened)

	payload, err := r.Respond(challenge)
	require.NoError(t, err)

	plaintext, err := domain.DecryptPrivate(payload)
	require.NoError(t, err)
	var result Result
	require.NoError(t, json.Unmarshal(plaintext, &result))
	assert.Equal(t, "billing", result.ServiceName)
	assert.Equal(t, Checksum(text), result.Challenge)
}

func TestResponder_RejectsForeignChallenge(t *testing.T) {
	root := serviceTree(t)
	r, _ := newResponder(t, root)
	_, impostor := newResponder(t, root)

	challenge, err := impostor.EncryptPrivate([]byte(blockScript))
	require.NoError(t, err)

	_, err = r.Open(challenge)
	assert.Error(t, err)
}
