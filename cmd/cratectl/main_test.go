package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("CATALOG_TOKEN", "test-token")
	t.Setenv("VIDEO_API_KEY", "test-key")
	t.Setenv("LOG_LEVEL", "error")
	return filepath.Join(t.TempDir(), "cli.db")
}

func TestAddAndListLabels(t *testing.T) {
	db := setupEnv(t)

	out, err := runCLI(t, "--db", db, "labels")
	require.NoError(t, err)
	assert.Contains(t, out, "No labels")

	out, err = runCLI(t, "--db", db, "add", "42", "--name", "Deep Label")
	require.NoError(t, err)
	assert.Contains(t, out, "Following label 42 (queued)")

	_, err = runCLI(t, "--db", db, "add", "42")
	assert.Error(t, err)

	out, err = runCLI(t, "--db", db, "labels")
	require.NoError(t, err)
	assert.Contains(t, out, "Deep Label")
	assert.Contains(t, out, "1/1")

	out, err = runCLI(t, "--db", db, "--owner", "someone-else", "labels")
	require.NoError(t, err)
	assert.Contains(t, out, "No labels")
}

func TestRetryRequiresErrorState(t *testing.T) {
	db := setupEnv(t)

	_, err := runCLI(t, "--db", db, "add", "42")
	require.NoError(t, err)

	_, err = runCLI(t, "--db", db, "retry", "42")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestQueueCommand(t *testing.T) {
	db := setupEnv(t)

	out, err := runCLI(t, "--db", db, "queue")
	require.NoError(t, err)
	assert.Contains(t, out, "Queue is empty")

	_, err = runCLI(t, "--db", db, "queue", "--status", "skipped")
	assert.Error(t, err)
}

func TestStepUnknownLabel(t *testing.T) {
	db := setupEnv(t)

	out, err := runCLI(t, "--db", db, "step", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "not_found")
}

func TestTables(t *testing.T) {
	errMsg := strings.Repeat("x", 100)
	out := labelTable([]*domain.Label{{ID: "42", Name: "Deep Label", Status: domain.LabelStatusError, CurrentPage: 2, TotalPages: 5, LastError: &errMsg}})
	assert.Contains(t, out, "2/5")
	assert.Contains(t, out, "…")

	out = queueTable([]*domain.QueueItem{{Priority: 10, Title: "Artist - Alpha", VideoID: "aaaaaaaaaaa", Source: domain.SourceSearch, AddedAt: time.Now()}})
	assert.Contains(t, out, "https://youtu.be/aaaaaaaaaaa")

	assert.Empty(t, renderTable(nil, nil, nil))
}
