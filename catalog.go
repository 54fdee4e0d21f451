package outdated

import "sort"

// Group is the manifest section that declared a dependency.
type Group string

const (
	GroupRuntime     Group = "dependencies"
	GroupDevelopment Group = "devDependencies"
	GroupOptional    Group = "optionalDependencies"
)

// GroupDeps pairs a declaration group with its name-to-range mapping.
type GroupDeps struct {
	Group Group
	Deps  map[string]string
}

// Catalog is the merged view of a project's declared dependencies: one range
// per name plus the group each name was first declared in.
type Catalog struct {
	ranges map[string]string
	groups map[string]Group
	names  []string
}

// BuildCatalog merges dependency groups in the order given. When a name
// appears in more than one group, the first occurrence wins for both the
// range and the group tag, so callers list groups in override order
// (runtime before development before optional).
func BuildCatalog(pairs ...GroupDeps) *Catalog {
	c := &Catalog{
		ranges: make(map[string]string),
		groups: make(map[string]Group),
	}
	for _, pair := range pairs {
		for name, rng := range pair.Deps {
			if _, seen := c.groups[name]; seen {
				continue
			}
			c.ranges[name] = rng
			c.groups[name] = pair.Group
			c.names = append(c.names, name)
		}
	}
	sort.Strings(c.names)
	return c
}

// Range returns the declared range for name, with ok reporting whether the
// name is a catalog member.
func (c *Catalog) Range(name string) (string, bool) {
	rng, ok := c.ranges[name]
	return rng, ok
}

// Group returns the declaration group for name. Names outside the catalog
// (explicitly requested packages) report the runtime group.
func (c *Catalog) Group(name string) Group {
	if g, ok := c.groups[name]; ok {
		return g
	}
	return GroupRuntime
}

// Names returns all catalog member names, sorted.
func (c *Catalog) Names() []string {
	return c.names
}

// Len returns the number of catalog members.
func (c *Catalog) Len() int {
	return len(c.names)
}
