package commands

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const installAnswers = "root\nroot@example.com\nAda\nLovelace\nabcdefg1\nabcdefg1\n"

func scaffold(t *testing.T) string {
	t.Helper()
	t.Setenv("TRUSTKEEPER_CONFIG", "")
	start := filepath.Join(t.TempDir(), "trustScaffold", "bin")
	require.NoError(t, os.MkdirAll(start, 0o700))
	return start
}

func run(t *testing.T, start, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(input), &out, io.Discard)
	root.SetArgs(append([]string{"-r", start, "-d", "acme"}, args...))
	err := root.Execute()
	return out.String(), err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInit_InstallsOnce(t *testing.T) {
	start := scaffold(t)

	out, err := run(t, start, installAnswers, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Super user name")
	assert.Contains(t, out, "Domain acme/development ready.")
	assert.Contains(t, out, "0\troot\t[super]")

	out, err = run(t, start, "", "init")
	require.NoError(t, err)
	assert.NotContains(t, out, "Super user name")
}

func TestInit_CanceledOnEndOfInput(t *testing.T) {
	_, err := run(t, scaffold(t), "root\n", "init")
	assert.Error(t, err)
}

func TestTokenAndVerify(t *testing.T) {
	start := scaffold(t)
	_, err := run(t, start, installAnswers, "init")
	require.NoError(t, err)

	out, err := run(t, start, "abcdefg1\n", "token", "user", "root")
	require.NoError(t, err)
	token := lastLine(out)

	out, err = run(t, start, "", "verify", token, "--service", "billing")
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "root"`)

	_, err = run(t, start, "wrongpass1\n", "token", "user", "root")
	assert.Error(t, err)

	_, err = run(t, start, "", "verify", "not-a-token")
	assert.Error(t, err)
}

func TestDeployAttestAndServiceToken(t *testing.T) {
	start := scaffold(t)
	_, err := run(t, start, installAnswers, "init")
	require.NoError(t, err)

	_, err = run(t, start, "", "token", "service", "billing")
	require.Error(t, err)

	out, err := run(t, start, "abcdefg1\n", "deploy", "billing", "1.0.0", "--admin", "root", "--package", "billing@1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "billing 1.0.0 deployed (owner 0)")

	src := t.TempDir()
	writeFile(t, src, "VERSION", "1.0.0\n")
	writeFile(t, src, "go.mod", "module example.com/billing\n")
	writeFile(t, src, "cmd/billing/main.go", "package main\n")
	writeFile(t, src, "internal/ledger/ledger.go", "package ledger\n")
	writeFile(t, src, "vendor/github.com/dmitrijs2005/trustkeeper/attest/script.go", "package attest\n")

	out, err = run(t, start, "", "attest", "billing", src)
	require.NoError(t, err)
	assert.Contains(t, out, "billing passed the service challenge")

	out, err = run(t, start, "", "token", "service", "billing")
	require.NoError(t, err)
	token := lastLine(out)

	_, err = run(t, start, "", "verify", token, "--service", "billing")
	require.NoError(t, err)
	_, err = run(t, start, "", "verify", token, "--service", "payroll")
	assert.Error(t, err)

	out, err = run(t, start, "", "get", "service", "billing")
	require.NoError(t, err)
	assert.Contains(t, out, `"package": "billing@1.0.0"`)
}

func TestPubkey(t *testing.T) {
	start := scaffold(t)
	_, err := run(t, start, installAnswers, "init")
	require.NoError(t, err)

	out, err := run(t, start, "", "pubkey")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "-----BEGIN PUBLIC KEY-----"))

	pemFile := filepath.Join(t.TempDir(), "domain.pem")
	require.NoError(t, os.WriteFile(pemFile, []byte(out), 0o644))
	out, err = run(t, start, "", "pubkey", "--check", pemFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Public key matches.")

	require.NoError(t, os.WriteFile(pemFile, []byte("-----BEGIN PUBLIC KEY-----\n"), 0o644))
	_, err = run(t, start, "", "pubkey", "--check", pemFile)
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	start := scaffold(t)

	out, err := run(t, start, "", "config", "domain")
	require.NoError(t, err)
	assert.Equal(t, `"acme"`, strings.TrimSpace(out))

	out, err = run(t, start, "", "-u", "30", "config", "tokenExpiry.user")
	require.NoError(t, err)
	assert.Equal(t, `"30m0s"`, strings.TrimSpace(out))

	cfgFile := filepath.Join(t.TempDir(), "trustkeeper.jsonc")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`{
	// reject patched builds
	"checksum_mismatch_policy": "reject",
}`), 0o600))
	out, err = run(t, start, "", "-c", cfgFile, "config", "policy.checksumMismatch")
	require.NoError(t, err)
	assert.Equal(t, `"reject"`, strings.TrimSpace(out))

	_, err = run(t, start, "", "config", "no.such.key")
	assert.Error(t, err)

	_, err = run(t, start, "", "-x", "Reject", "config", "domain")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	_, err = run(t, start, "", "-t", "0", "config", "domain")
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}
