// Package outdated reports which installed npm dependencies differ from the
// version satisfying their declared range ("wanted") and the most recently
// published version ("latest").
//
// The evaluation merges the root manifest's dependency groups into a catalog,
// resolves each requested name against the installed tree and the registry,
// and renders the result as a table, parseable lines, or JSON.
//
// Basic usage:
//
//	tree, err := outdated.LoadTree(".")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	registry := outdated.NewRegistry("", nil)
//	records, err := outdated.CheckTree(context.Background(), tree, registry, outdated.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(outdated.Render(records, outdated.Options{}))
package outdated

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/git-pkgs/outdated/internal/npm"
	"github.com/git-pkgs/outdated/internal/npmtree"
	"github.com/git-pkgs/outdated/internal/pick"
)

// Re-export types from the internal packages
type (
	// Spec is a parsed package specifier.
	Spec = npm.Spec

	// Packument is the registry document for one package name.
	Packument = npm.Packument

	// Manifest is the metadata for one published version.
	Manifest = npm.Manifest

	// PackumentOptions control how a packument is fetched.
	PackumentOptions = npm.PackumentOptions

	// Node is an installed package on disk.
	Node = npmtree.Node

	// InstalledTree is the on-disk dependency tree of a project.
	InstalledTree = npmtree.Tree
)

// Re-export errors. These three kinds are suppressed per dependency during
// evaluation; any other failure aborts the whole check.
var (
	ErrNotFound  = npm.ErrNotFound
	ErrForbidden = npm.ErrForbidden
	ErrNoTarget  = pick.ErrNoTarget
)

// ParseSpec parses a raw specifier like "lodash" or "@babel/core@^7" into a
// structured Spec.
var ParseSpec = npm.ParseSpec

// LoadTree loads the installed dependency tree rooted at dir.
var LoadTree = npmtree.Load

// NewRegistry creates an npm registry client. If baseURL is empty the public
// registry is used; if the getter is nil a default retrying client is used.
var NewRegistry = npm.New

// PickManifest selects the manifest matching a semver range or dist-tag from
// a packument.
var PickManifest = pick.Manifest

// Registry fetches packuments. Implemented by *npm.Registry; substitutable in
// tests.
type Registry interface {
	Packument(ctx context.Context, spec *Spec, opts PackumentOptions) (*Packument, error)
}

// Tree is the read-only view of installed packages the evaluation needs.
// Implemented by *InstalledTree.
type Tree interface {
	Child(name string) *Node
	ChildNames() []string
}

// Record is the report row for one outdated dependency. A record exists only
// when the package is missing, the installed version differs from wanted, or
// wanted differs from latest.
type Record struct {
	Name     string
	Group    Group
	Path     string // installed location, "" when not installed
	Current  string // installed version, "" when not installed
	Homepage string
	Wanted   string
	Latest   string
	Location string // name of the project being inspected
}

// Options is the immutable configuration for one evaluation. The zero value
// checks every catalog member sequentially-ish (bounded by DefaultWorkers)
// and renders a plain table.
type Options struct {
	// Names restricts the check to explicit specifiers. Each may carry its
	// own range ("react@^18"); otherwise the catalog range applies. Empty
	// means every declared dependency.
	Names []string

	// Global marks a global-install check; when the catalog is empty the
	// installed children become the requested set.
	Global bool

	// Output mode. JSON wins over Parseable; both off renders a table.
	JSON      bool
	Parseable bool
	Long      bool
	Color     bool

	// Location is the owning project name stamped on each record.
	Location string

	// Workers bounds parallel registry fetches. Zero means DefaultWorkers;
	// one evaluates strictly sequentially.
	Workers int

	// Logger receives per-dependency debug lines. Nil discards them.
	Logger *log.Logger
}

// DefaultWorkers is the registry fetch concurrency when Options.Workers is
// unset.
const DefaultWorkers = 10

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return DefaultWorkers
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// CheckTree builds the catalog from the tree's declared groups and evaluates
// it. The tree's project name becomes the record location unless Options
// already carries one.
func CheckTree(ctx context.Context, tree *InstalledTree, registry Registry, opts Options) ([]Record, error) {
	catalog := BuildCatalog(
		GroupDeps{Group: GroupRuntime, Deps: tree.Runtime},
		GroupDeps{Group: GroupDevelopment, Deps: tree.Development},
		GroupDeps{Group: GroupOptional, Deps: tree.Optional},
	)
	if opts.Location == "" {
		opts.Location = tree.Name
	}
	return Check(ctx, tree, catalog, registry, opts)
}

// Check evaluates the requested dependencies and returns the records sorted
// by name. The first non-suppressed failure aborts the evaluation; the three
// suppressible kinds (ErrNoTarget, ErrNotFound, ErrForbidden) skip only the
// dependency that raised them.
func Check(ctx context.Context, tree Tree, catalog *Catalog, registry Registry, opts Options) ([]Record, error) {
	requested := opts.Names
	if len(requested) == 0 {
		requested = catalog.Names()
		if len(requested) == 0 && opts.Global {
			requested = tree.ChildNames()
		}
	}

	var (
		mu      sync.Mutex
		records []Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for _, raw := range requested {
		g.Go(func() error {
			// A prior fatal failure cancels the group; later dependencies
			// are not evaluated.
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := resolve(gctx, tree, catalog, registry, raw, opts)
			if err != nil {
				return err
			}
			if rec != nil {
				mu.Lock()
				records = append(records, *rec)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortRecords(records)
	return records, nil
}

// resolve evaluates a single dependency. It returns (nil, nil) when the
// dependency contributes no record.
func resolve(ctx context.Context, tree Tree, catalog *Catalog, registry Registry, raw string, opts Options) (*Record, error) {
	logger := opts.logger()

	spec, err := npm.ParseSpec(raw)
	if err != nil {
		return nil, err
	}

	rng := spec.Range
	if rng == "" {
		// Names outside the catalog have no declared range; the picker then
		// falls back to the latest dist-tag.
		rng, _ = catalog.Range(spec.Name)
	}

	group := catalog.Group(spec.Name)
	node := tree.Child(spec.Name)

	// Development-only tooling that is not installed locally is not outdated.
	if node == nil && group == GroupDevelopment {
		logger.Debug("skipping uninstalled dev dependency", "name", spec.Name)
		return nil, nil
	}

	packument, err := registry.Packument(ctx, spec, npm.PackumentOptions{
		FullMetadata: opts.Long,
		PreferOnline: true,
	})
	if err != nil {
		return nil, suppress(err, spec.Name, logger)
	}

	wanted, err := pick.Manifest(packument, rng)
	if err != nil {
		return nil, suppress(err, spec.Name, logger)
	}
	latest, err := pick.Manifest(packument, "latest")
	if err != nil {
		return nil, suppress(err, spec.Name, logger)
	}

	installed := ""
	path := ""
	homepage := wanted.HomepageURL()
	if node != nil {
		installed = node.Version
		path = node.Path
		if node.Homepage != "" {
			homepage = node.Homepage
		}
	}

	if node != nil && installed == wanted.Version && wanted.Version == latest.Version {
		logger.Debug("up to date", "name", spec.Name, "version", installed)
		return nil, nil
	}

	logger.Debug("outdated",
		"name", spec.Name,
		"current", installed,
		"wanted", wanted.Version,
		"latest", latest.Version,
	)

	return &Record{
		Name:     spec.Name,
		Group:    group,
		Path:     path,
		Current:  installed,
		Homepage: homepage,
		Wanted:   wanted.Version,
		Latest:   latest.Version,
		Location: opts.Location,
	}, nil
}

// suppress converts the three per-dependency failure kinds into a silent
// skip; everything else propagates and aborts the evaluation.
func suppress(err error, name string, logger *log.Logger) error {
	if errors.Is(err, pick.ErrNoTarget) || errors.Is(err, npm.ErrNotFound) || errors.Is(err, npm.ErrForbidden) {
		logger.Debug("skipping dependency", "name", name, "reason", err)
		return nil
	}
	return err
}

// sortRecords orders records by name with a locale-aware comparison. Names
// are unique per evaluation, so a stable sort makes the order deterministic.
func sortRecords(records []Record) {
	c := collate.New(language.Und)
	sort.SliceStable(records, func(i, j int) bool {
		return c.CompareString(records[i].Name, records[j].Name) < 0
	})
}

// ExitStatus returns the process exit status for a result set: 1 when any
// dependency is outdated, 0 otherwise.
func ExitStatus(records []Record) int {
	if len(records) > 0 {
		return 1
	}
	return 0
}
