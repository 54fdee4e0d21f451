package outdated

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCheckTree(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "package.json"), `{
		"name": "fixture-project",
		"version": "1.0.0",
		"dependencies": {"demo": "^1.0.0"},
		"devDependencies": {"mocha": "^10.0.0"}
	}`)
	writeFixture(t, filepath.Join(dir, "node_modules", "demo", "package.json"), `{
		"name": "demo",
		"version": "1.0.0",
		"homepage": "https://demo.dev"
	}`)
	// mocha is declared but not installed: suppressed as a dev dependency.

	tree, err := LoadTree(dir)
	require.NoError(t, err)

	registry := &fakeRegistry{packuments: map[string]*Packument{
		"demo": newPackument("demo", "1.2.0", "1.0.0", "1.0.5", "1.2.0"),
	}}

	records, err := CheckTree(context.Background(), tree, registry, Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, "demo", rec.Name)
	require.Equal(t, "1.0.0", rec.Current)
	require.Equal(t, "1.0.5", rec.Wanted)
	require.Equal(t, "1.2.0", rec.Latest)
	require.Equal(t, "fixture-project", rec.Location)
	require.Equal(t, filepath.Join(dir, "node_modules", "demo"), rec.Path)
	require.Equal(t, "https://demo.dev", rec.Homepage)
	require.Equal(t, 1, registry.callCount())
}

func TestCheckTree_AllCurrent(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "package.json"), `{
		"name": "fixture-project",
		"dependencies": {"demo": "^1.0.0"}
	}`)
	writeFixture(t, filepath.Join(dir, "node_modules", "demo", "package.json"), `{
		"name": "demo",
		"version": "1.0.5"
	}`)

	tree, err := LoadTree(dir)
	require.NoError(t, err)

	registry := &fakeRegistry{packuments: map[string]*Packument{
		"demo": newPackument("demo", "1.0.5", "1.0.0", "1.0.5"),
	}}

	records, err := CheckTree(context.Background(), tree, registry, Options{})
	require.NoError(t, err)
	require.Empty(t, records)
	require.Equal(t, 0, ExitStatus(records))
}
