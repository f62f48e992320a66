package cachedir

import "path"

// Entry pairs a cache kind with the directory its package manager keeps
// on the step image.
type Entry struct {
	Kind string
	Path string
}

// Registry is an immutable, ordered table of supported cache kinds.
// Iteration order is part of the contract: generated plugin settings list
// mount paths in table order.
type Registry struct {
	entries []Entry
	paths   map[string]string
}

// NewRegistry builds a registry from entries, preserving their order.
// Duplicate kinds keep their first position but take the latest path.
func NewRegistry(entries ...Entry) *Registry {
	reg := &Registry{
		entries: make([]Entry, 0, len(entries)),
		paths:   make(map[string]string, len(entries)),
	}
	index := make(map[string]int, len(entries))
	for _, entry := range entries {
		if i, exists := index[entry.Kind]; exists {
			reg.entries[i] = entry
		} else {
			index[entry.Kind] = len(reg.entries)
			reg.entries = append(reg.entries, entry)
		}
		reg.paths[entry.Kind] = entry.Path
	}
	return reg
}

var defaultRegistry = NewRegistry(
	Entry{Kind: "composer", Path: "/root/.composer/cache"},
	Entry{Kind: "npm", Path: "/root/.npm"},
	Entry{Kind: "yarn", Path: ".yarn/cache"},
	Entry{Kind: "dotnetcore", Path: "/root/.nuget/packages"},
	Entry{Kind: "gradle", Path: "/root/.gradle/caches"},
	Entry{Kind: "ivy2", Path: "/root/.ivy2/cache"},
	Entry{Kind: "maven", Path: "/root/.m2/repository"},
	Entry{Kind: "pip", Path: "/root/.cache/pip"},
	Entry{Kind: "sbt", Path: "/root/.sbt"},
)

// Default returns the built-in table of well-known package manager caches.
// The yarn cache is the only entry relative to the step workspace.
func Default() *Registry {
	return defaultRegistry
}

// Lookup returns the cache directory for a kind. Unknown kinds are a normal
// outcome, reported through the boolean rather than an error.
func (r *Registry) Lookup(kind string) (string, bool) {
	p, ok := r.paths[kind]
	return p, ok
}

// Supported reports whether a kind is present in the table.
func (r *Registry) Supported(kind string) bool {
	_, ok := r.paths[kind]
	return ok
}

// Entries returns a copy of the table in iteration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Rooted reports whether a cache directory is anchored at the container
// filesystem root. Step images are Linux containers, so this is a slash
// check regardless of the host the converter runs on.
func Rooted(p string) bool {
	return path.IsAbs(p)
}
