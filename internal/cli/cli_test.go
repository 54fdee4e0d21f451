package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// registryServer serves minimal packuments for the given packages.
func registryServer(t *testing.T, packuments map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[1:]
		p, ok := packuments[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	}))
	t.Cleanup(server.Close)
	return server
}

func projectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{
		"name": "cli-fixture",
		"dependencies": {"demo": "^1.0.0"}
	}`)
	writeFile(t, filepath.Join(dir, "node_modules", "demo", "package.json"), `{
		"name": "demo",
		"version": "1.0.0"
	}`)
	return dir
}

func TestRun_OutdatedJSON(t *testing.T) {
	server := registryServer(t, map[string]any{
		"demo": map[string]any{
			"name":      "demo",
			"dist-tags": map[string]string{"latest": "1.2.0"},
			"versions": map[string]any{
				"1.0.0": map[string]string{"name": "demo", "version": "1.0.0"},
				"1.0.5": map[string]string{"name": "demo", "version": "1.0.5"},
				"1.2.0": map[string]string{"name": "demo", "version": "1.2.0"},
			},
		},
	})
	dir := projectDir(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--json", "--registry", server.URL, "--prefix", dir})

	err := cmd.ExecuteContext(context.Background())
	if !errors.Is(err, ErrOutdated) {
		t.Fatalf("expected ErrOutdated, got %v", err)
	}

	var decoded map[string]map[string]string
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out.String())
	}
	entry, ok := decoded["demo"]
	if !ok {
		t.Fatalf("expected demo in output, got %v", decoded)
	}
	if entry["current"] != "1.0.0" || entry["wanted"] != "1.0.5" || entry["latest"] != "1.2.0" {
		t.Errorf("unexpected record: %v", entry)
	}
}

func TestRun_AllCurrentIsSilent(t *testing.T) {
	server := registryServer(t, map[string]any{
		"demo": map[string]any{
			"name":      "demo",
			"dist-tags": map[string]string{"latest": "1.0.0"},
			"versions": map[string]any{
				"1.0.0": map[string]string{"name": "demo", "version": "1.0.0"},
			},
		},
	})
	dir := projectDir(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--registry", server.URL, "--prefix", dir})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestRun_UnpublishedPackageIsSkipped(t *testing.T) {
	// The registry knows nothing about "demo": 404 is suppressed and the
	// check succeeds with no output.
	server := registryServer(t, map[string]any{})
	dir := projectDir(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--registry", server.URL, "--prefix", dir})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("expected suppressed not-found, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("OUTDATED_REGISTRY", "https://registry.example")
	t.Setenv("OUTDATED_WORKERS", "3")

	cfg := loadConfig()
	if cfg.Registry != "https://registry.example" {
		t.Errorf("registry = %q", cfg.Registry)
	}
	if cfg.Workers != 3 {
		t.Errorf("workers = %d", cfg.Workers)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outdated.yaml")
	writeFile(t, path, "registry: https://mirror.example\ncolor: true\n")
	t.Setenv("OUTDATED_CONFIG", path)

	cfg := loadConfig()
	if cfg.Registry != "https://mirror.example" {
		t.Errorf("registry = %q", cfg.Registry)
	}
	if !cfg.Color {
		t.Error("expected color enabled")
	}
}
