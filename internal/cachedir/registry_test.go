package cachedir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
)

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	expected := []cachedir.Entry{
		{Kind: "composer", Path: "/root/.composer/cache"},
		{Kind: "npm", Path: "/root/.npm"},
		{Kind: "yarn", Path: ".yarn/cache"},
		{Kind: "dotnetcore", Path: "/root/.nuget/packages"},
		{Kind: "gradle", Path: "/root/.gradle/caches"},
		{Kind: "ivy2", Path: "/root/.ivy2/cache"},
		{Kind: "maven", Path: "/root/.m2/repository"},
		{Kind: "pip", Path: "/root/.cache/pip"},
		{Kind: "sbt", Path: "/root/.sbt"},
	}

	assert.Equal(t, expected, cachedir.Default().Entries())
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		kind      string
		path      string
		supported bool
	}{
		{"known kind", "npm", "/root/.npm", true},
		{"relative kind", "yarn", ".yarn/cache", true},
		{"unknown kind", "cargo", "", false},
		{"empty kind", "", "", false},
		{"case sensitive", "NPM", "", false},
	}

	reg := cachedir.Default()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path, ok := reg.Lookup(tt.kind)
			assert.Equal(t, tt.supported, ok)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.supported, reg.Supported(tt.kind))
		})
	}
}

func TestNewRegistryKeepsFirstPosition(t *testing.T) {
	t.Parallel()

	reg := cachedir.NewRegistry(
		cachedir.Entry{Kind: "npm", Path: "/a"},
		cachedir.Entry{Kind: "pip", Path: "/b"},
		cachedir.Entry{Kind: "npm", Path: "/c"},
	)

	entries := reg.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "npm", entries[0].Kind)
	assert.Equal(t, "pip", entries[1].Kind)

	// Duplicate kinds keep their first position but take the latest path.
	path, ok := reg.Lookup("npm")
	require.True(t, ok)
	assert.Equal(t, "/c", path)
}

func TestEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	reg := cachedir.Default()
	entries := reg.Entries()
	entries[0] = cachedir.Entry{Kind: "mutated", Path: "/nowhere"}

	assert.Equal(t, "composer", reg.Entries()[0].Kind)
}

func TestRooted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		rooted bool
	}{
		{"absolute", "/root/.npm", true},
		{"relative", ".yarn/cache", false},
		{"bare name", "cache", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.rooted, cachedir.Rooted(tt.path))
		})
	}
}
