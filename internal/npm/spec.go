package npm

import (
	"fmt"
	"strings"

	"github.com/git-pkgs/purl"
)

// Spec is a parsed package specifier: an optionally scoped name plus an
// optional version range or dist-tag.
type Spec struct {
	Raw   string // original specifier string
	Name  string // full registry name, e.g. "@babel/core"
	Scope string // "@babel" for scoped packages, "" otherwise
	Range string // declared range or dist-tag, "" if none

	// PURL is the parsed canonical Package URL for the name.
	PURL *purl.PURL
}

// ParseSpec parses a raw specifier like "lodash", "@babel/core" or
// "react@^18.0.0" into a structured Spec.
func ParseSpec(raw string) (*Spec, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty package specifier")
	}

	name := raw
	rng := ""

	// The version separator is the first "@" past position zero, so scoped
	// names keep their leading "@".
	if at := strings.Index(raw[1:], "@"); at >= 0 {
		name = raw[:at+1]
		rng = raw[at+2:]
	}

	if name == "" || strings.HasSuffix(name, "/") {
		return nil, fmt.Errorf("invalid package specifier: %q", raw)
	}

	scope := ""
	if strings.HasPrefix(name, "@") {
		idx := strings.Index(name, "/")
		if idx < 0 {
			return nil, fmt.Errorf("invalid scoped package specifier: %q", raw)
		}
		scope = name[:idx]
	}

	p, err := purl.Parse(purlString(name))
	if err != nil {
		return nil, fmt.Errorf("invalid package name %q: %w", name, err)
	}

	return &Spec{
		Raw:   raw,
		Name:  name,
		Scope: scope,
		Range: rng,
		PURL:  p,
	}, nil
}

// purlString builds the canonical purl for a registry name.
func purlString(name string) string {
	return fmt.Sprintf("pkg:npm/%s", name)
}
