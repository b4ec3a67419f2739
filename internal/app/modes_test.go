package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/gridwatch/internal/catalog"
	"github.com/avolkov/gridwatch/internal/config"
	"github.com/avolkov/gridwatch/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Defaults()
	return New(&cfg, testLogger())
}

// testDeps builds Dependencies whose catalog is served entirely from a
// pre-written cache file, so no lister is ever consulted.
func testDeps(t *testing.T, assets []domain.Asset) *Dependencies {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.json")
	data, err := json.Marshal(assets)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return &Dependencies{Catalog: catalog.New(path, nil, testLogger())}
}

func TestPromptSelectionAcceptsLabelAfterUnknown(t *testing.T) {
	a := testApp(t)
	deps := testDeps(t, []domain.Asset{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	})

	scanner := bufio.NewScanner(strings.NewReader("dogecoin\nBTC - Bitcoin\n"))
	asset, ok := a.promptSelection(context.Background(), deps, scanner)

	require.True(t, ok)
	assert.Equal(t, "bitcoin", asset.ID)
}

func TestPromptSelectionAcceptsBareID(t *testing.T) {
	a := testApp(t)
	deps := testDeps(t, []domain.Asset{
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
	})

	scanner := bufio.NewScanner(strings.NewReader("Ethereum\n"))
	asset, ok := a.promptSelection(context.Background(), deps, scanner)

	require.True(t, ok)
	assert.Equal(t, "ethereum", asset.ID)
}

func TestPromptSelectionExitAndEOF(t *testing.T) {
	a := testApp(t)
	deps := testDeps(t, []domain.Asset{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
	})

	_, ok := a.promptSelection(context.Background(), deps, bufio.NewScanner(strings.NewReader("exit\n")))
	assert.False(t, ok)

	_, ok = a.promptSelection(context.Background(), deps, bufio.NewScanner(strings.NewReader("")))
	assert.False(t, ok)
}

func TestPrintCatalogColumnMajor(t *testing.T) {
	assets := []domain.Asset{
		{ID: "a", Symbol: "aa", Name: "Alpha"},
		{ID: "b", Symbol: "bb", Name: "Bravo"},
		{ID: "c", Symbol: "cc", Name: "Charlie"},
		{ID: "d", Symbol: "dd", Name: "Delta"},
		{ID: "e", Symbol: "ee", Name: "Echo"},
	}

	var buf bytes.Buffer
	printCatalog(&buf, assets)

	// Five labels over three columns give two rows; labels run down each
	// column: row 0 holds entries 0, 2, 4 and row 1 holds 1, 3.
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	row0 := strings.Fields(strings.ReplaceAll(lines[0], " - ", "-"))
	row1 := strings.Fields(strings.ReplaceAll(lines[1], " - ", "-"))
	assert.Equal(t, []string{"AA-Alpha", "CC-Charlie", "EE-Echo"}, row0)
	assert.Equal(t, []string{"BB-Bravo", "DD-Delta"}, row1)
}

func TestPrintCatalogEmpty(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestNormalizeShutdown(t *testing.T) {
	assert.NoError(t, normalizeShutdown(nil))
	assert.NoError(t, normalizeShutdown(context.Canceled))
	assert.NoError(t, normalizeShutdown(fmt.Errorf("scheduler: %w", context.Canceled)))

	boom := errors.New("boom")
	assert.ErrorIs(t, normalizeShutdown(boom), boom)
}
