package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driving/cli"
)

func TestBootstrap_SettingsOnly(t *testing.T) {
	dir := t.TempDir()

	svc, cleanup, err := bootstrap(context.Background(), cli.BootstrapOptions{ConfigDir: dir, SettingsOnly: true})

	require.NoError(t, err)
	assert.Nil(t, cleanup)
	require.NotNil(t, svc.Settings)
	assert.Nil(t, svc.Retrieval)
	assert.Nil(t, svc.Ingest)

	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.True(t, os.IsNotExist(err), "settings-only bootstrap must not create storage")
}

func TestBootstrap_MemoryStorageEndToEnd(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	ctx := context.Background()

	settingsOnly, _, err := bootstrap(ctx, cli.BootstrapOptions{ConfigDir: dir, SettingsOnly: true})
	require.NoError(t, err)
	require.NoError(t, settingsOnly.Settings.Set("storage.driver", "memory"))

	svc, cleanup, err := bootstrap(ctx, cli.BootstrapOptions{ConfigDir: dir})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer cleanup()

	report, err := svc.Ingest.IngestText(ctx, "hours.md",
		"Nuestro horario de apertura es de lunes a sábado, de 9 a 18 horas. Cerrado los domingos.")
	require.NoError(t, err)
	assert.Positive(t, report.Chunks)
	assert.Zero(t, report.Embedded)

	result, err := svc.Retrieval.Search(ctx, "¿Cuál es el horario de apertura?", 3)
	require.NoError(t, err)
	assert.True(t, result.HasRelevantContext)
	assert.Equal(t, []string{"hours.md"}, result.Sources)
}

func TestBootstrap_SQLiteUsesConfigDir(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()

	svc, cleanup, err := bootstrap(context.Background(), cli.BootstrapOptions{ConfigDir: dir})
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, svc.Retrieval)
	assert.FileExists(t, filepath.Join(dir, "data", "knowledge.db"))
}
