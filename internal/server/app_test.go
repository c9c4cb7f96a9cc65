package server

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPrompter struct{ user models.NewUser }

func (p fixedPrompter) PromptNewUser(context.Context) (models.NewUser, error) {
	return p.user, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	start := filepath.Join(t.TempDir(), "trustScaffold")
	require.NoError(t, os.MkdirAll(start, 0o700))

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Domain = "acme"
	cfg.StartDir = start
	return cfg
}

var admin = models.NewUser{Username: "root", Email: "root@example.com", Password: "abcdefg1"}

func TestNewApp_UnknownStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = "s3"

	_, err := NewApp(context.Background(), cfg, fixedPrompter{admin}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreNotImplemented)
}

func TestApp_Init(t *testing.T) {
	var logs bytes.Buffer
	app, err := NewApp(context.Background(), testConfig(t), fixedPrompter{admin}, &logs)
	require.NoError(t, err)

	all, err := app.Init(context.Background())
	require.NoError(t, err)
	assert.Contains(t, all, common.SuperUserUID)

	user, err := app.Gateway().LoginUser(context.Background(), "root", "abcdefg1")
	require.NoError(t, err)
	assert.Equal(t, common.SuperUserUID, user.Credentials.UID)

	assert.Contains(t, logs.String(), `"domain":"acme"`)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t), fixedPrompter{admin}, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = app.Init(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, app.Run(ctx))
}
