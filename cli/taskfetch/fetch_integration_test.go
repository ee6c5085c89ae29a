//go:build integration

package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir, sourceURL, cacheDir string) string {
	t.Helper()
	content := fmt.Sprintf(`
sources:
  - name: test
    url: %s
    enabled: true
settings:
  cache_dir: %s
  connect_timeout: 2s
  timeout: 10s
  log_level: warn
`, sourceURL, cacheDir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestFetch_EndToEnd(t *testing.T) {
	content := []byte("#!/bin/sh\necho deployed\n")
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/tasks/run.sh" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(content)
	}))
	defer server.Close()

	tempDir := t.TempDir()
	cacheDir := filepath.Join(tempDir, "cache")
	cfgPath := writeTestConfig(t, tempDir, server.URL, cacheDir)

	out, err := runCommand(t,
		"fetch", "run.sh",
		"--config", cfgPath,
		"--sha256", digest,
		"--path", "/tasks/run.sh",
	)
	require.NoError(t, err)

	installed := strings.TrimSpace(out)
	got, err := os.ReadFile(installed)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, 1, hits)

	// Second run is served from the cache without touching the network.
	_, err = runCommand(t,
		"fetch", "run.sh",
		"--config", cfgPath,
		"--sha256", digest,
		"--path", "/tasks/run.sh",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestFetch_ManifestEndToEnd(t *testing.T) {
	contentA := []byte("file a content")
	contentB := []byte("file b content")
	sumA := sha256.Sum256(contentA)
	sumB := sha256.Sum256(contentB)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks/a.sh":
			_, _ = w.Write(contentA)
		case "/tasks/b.sh":
			_, _ = w.Write(contentB)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	tempDir := t.TempDir()
	cacheDir := filepath.Join(tempDir, "cache")
	cfgPath := writeTestConfig(t, tempDir, server.URL, cacheDir)

	manifest := fmt.Sprintf(`
name: deploy
files:
  - filename: a.sh
    sha256: %s
    uri:
      path: /tasks/a.sh
  - filename: b.sh
    sha256: %s
    uri:
      path: /tasks/b.sh
`, hex.EncodeToString(sumA[:]), hex.EncodeToString(sumB[:]))
	manifestPath := filepath.Join(tempDir, "manifest.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o644))

	out, err := runCommand(t, "fetch", "--config", cfgPath, "--manifest", manifestPath)
	require.NoError(t, err)
	assert.Contains(t, out, "a.sh: ")
	assert.Contains(t, out, "b.sh: ")

	got, err := os.ReadFile(filepath.Join(cacheDir, "a.sh"))
	require.NoError(t, err)
	assert.Equal(t, contentA, got)
}

func TestFetch_ChecksumMismatchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("unexpected content"))
	}))
	defer server.Close()

	tempDir := t.TempDir()
	cacheDir := filepath.Join(tempDir, "cache")
	cfgPath := writeTestConfig(t, tempDir, server.URL, cacheDir)

	wrong := strings.Repeat("ab", 32)
	_, err := runCommand(t,
		"fetch", "run.sh",
		"--config", cfgPath,
		"--sha256", wrong,
		"--path", "/tasks/run.sh",
	)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(cacheDir, "run.sh"))
}

func TestDigestCommand(t *testing.T) {
	content := []byte("digest me")
	sum := sha256.Sum256(content)

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	out, err := runCommand(t, "digest", path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), strings.TrimSpace(out))
}

func TestCacheInfoAndClean(t *testing.T) {
	tempDir := t.TempDir()
	cacheDir := filepath.Join(tempDir, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "payload"), []byte("1234"), 0o644))
	cfgPath := writeTestConfig(t, tempDir, "https://unused.example", cacheDir)

	out, err := runCommand(t, "cache", "info", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 1")

	out, err = runCommand(t, "cache", "clean", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Freed 4 bytes")
}
