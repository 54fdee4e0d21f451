// Package pick selects a version manifest from a packument given a semver
// range or a dist-tag.
package pick

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/git-pkgs/outdated/internal/npm"
)

// ErrNoTarget is returned when no published version satisfies the requested
// range or dist-tag.
var ErrNoTarget = errors.New("no matching version")

// Manifest returns the manifest for the version matching want.
//
// want may be a semver range ("^1.0.0"), an exact version, or a dist-tag name
// ("latest", "beta"). An empty want selects the "latest" dist-tag. Dist-tags
// take precedence over range interpretation, matching registry semantics.
func Manifest(p *npm.Packument, want string) (*npm.Manifest, error) {
	if want == "" {
		want = "latest"
	}

	if version, ok := p.DistTags[want]; ok {
		return byVersion(p, version)
	}

	constraint, err := semver.NewConstraint(want)
	if err != nil {
		return nil, fmt.Errorf("%w: %s@%s", ErrNoTarget, p.Name, want)
	}

	var best, bestDeprecated *semver.Version
	for number, m := range p.Versions {
		v, err := semver.NewVersion(number)
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if m.Deprecated != "" {
			if bestDeprecated == nil || v.GreaterThan(bestDeprecated) {
				bestDeprecated = v
			}
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}

	// A deprecated version is better than no version at all.
	if best == nil {
		best = bestDeprecated
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s@%s", ErrNoTarget, p.Name, want)
	}

	return byVersion(p, best.Original())
}

func byVersion(p *npm.Packument, version string) (*npm.Manifest, error) {
	m, ok := p.Versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrNoTarget, p.Name, version)
	}
	if m.Version == "" {
		m.Version = version
	}
	return m, nil
}
