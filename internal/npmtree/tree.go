// Package npmtree loads the installed dependency tree of a project: the root
// package.json plus the direct children under node_modules.
package npmtree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// manifest is the subset of package.json this package reads.
type manifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Homepage             any               `json:"homepage"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// Node is a package actually present on disk.
type Node struct {
	Name     string
	Version  string
	Path     string
	Homepage string
}

// Tree is the installed dependency tree rooted at a project directory.
type Tree struct {
	Name string // root project name, "" if the root has no manifest
	Path string // project directory

	// Declared dependency groups from the root manifest.
	Runtime     map[string]string
	Development map[string]string
	Optional    map[string]string

	children map[string]*Node
}

// Load reads the tree rooted at dir. A missing root package.json or a missing
// node_modules directory yields an empty (but valid) tree, which is what the
// global install root looks like.
func Load(dir string) (*Tree, error) {
	t := &Tree{
		Path:     dir,
		children: make(map[string]*Node),
	}

	root, err := readManifest(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, err
	}
	if root != nil {
		t.Name = root.Name
		t.Runtime = root.Dependencies
		t.Development = root.DevDependencies
		t.Optional = root.OptionalDependencies
	}

	if err := t.loadChildren(filepath.Join(dir, "node_modules")); err != nil {
		return nil, err
	}
	return t, nil
}

// Child returns the installed node for a direct dependency, or nil.
func (t *Tree) Child(name string) *Node {
	return t.children[name]
}

// ChildNames returns the names of all installed direct children, sorted.
func (t *Tree) ChildNames() []string {
	names := make([]string, 0, len(t.children))
	for name := range t.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Tree) loadChildren(modulesDir string) error {
	entries, err := os.ReadDir(modulesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", modulesDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		if strings.HasPrefix(entry.Name(), "@") {
			scopeDir := filepath.Join(modulesDir, entry.Name())
			scoped, err := os.ReadDir(scopeDir)
			if err != nil {
				return fmt.Errorf("reading %s: %w", scopeDir, err)
			}
			for _, sub := range scoped {
				if !sub.IsDir() || strings.HasPrefix(sub.Name(), ".") {
					continue
				}
				name := entry.Name() + "/" + sub.Name()
				if err := t.addChild(name, filepath.Join(scopeDir, sub.Name())); err != nil {
					return err
				}
			}
			continue
		}

		if err := t.addChild(entry.Name(), filepath.Join(modulesDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) addChild(name, dir string) error {
	m, err := readManifest(filepath.Join(dir, "package.json"))
	if err != nil {
		return err
	}
	if m == nil {
		// Stray directory without a manifest; not an installed package.
		return nil
	}

	t.children[name] = &Node{
		Name:     name,
		Version:  m.Version,
		Path:     dir,
		Homepage: extractString(m.Homepage),
	}
	return nil
}

// readManifest returns nil without error when the file does not exist.
func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

func extractString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if arr, ok := v.([]any); ok && len(arr) > 0 {
		if s, ok := arr[0].(string); ok {
			return s
		}
	}
	return ""
}
