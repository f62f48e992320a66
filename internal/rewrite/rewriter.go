package rewrite

import (
	"strings"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
)

const (
	kindPipeline = "pipeline"

	// Environment entries carrying this prefix are handed to generated
	// steps with the prefix rewritten for the cache plugin.
	envPrefix    = "CACHE_"
	pluginPrefix = "PLUGIN_"

	// cacheRootKey, when present in the remapped environment, overrides
	// where generated steps mount the shared cache volume.
	cacheRootKey     = "PLUGIN_FILESYSTEM_CACHE_ROOT"
	defaultCacheRoot = "/tmp/cache"

	// sharedVolume names the host-backed volume every generated step mounts.
	sharedVolume = "cache"
)

// Params carries the construction-time configuration for a Rewriter.
type Params struct {
	Image     string            // plugin image run by generated cache steps
	CachePath string            // host directory backing the shared cache volume
	Environ   map[string]string // process environment; CACHE_* entries pass through
}

// Rewriter rewrites pipeline config streams so that steps declaring caches
// are wrapped with cache-restore and cache-rebuild plugin steps. All state
// is fixed at construction, so a single instance is safe for concurrent use.
type Rewriter struct {
	registry  *cachedir.Registry
	image     string
	cachePath string
	env       map[string]string
	cacheRoot string
}

// NewRewriter creates a rewriter over the given registry. The pass-through
// environment is derived once: every CACHE_* entry is remapped to PLUGIN_*
// with its value unchanged, and nothing else leaks through.
func NewRewriter(registry *cachedir.Registry, params Params) *Rewriter {
	env := make(map[string]string)
	for key, value := range params.Environ {
		if strings.HasPrefix(key, envPrefix) {
			env[pluginPrefix+strings.TrimPrefix(key, envPrefix)] = value
		}
	}

	cacheRoot := defaultCacheRoot
	if root, ok := env[cacheRootKey]; ok {
		cacheRoot = root
	}

	return &Rewriter{
		registry:  registry,
		image:     params.Image,
		cachePath: params.CachePath,
		env:       env,
		cacheRoot: cacheRoot,
	}
}

// Result describes one rewrite pass over a config stream.
type Result struct {
	Config    string // the re-serialized stream
	Documents int    // documents parsed from the stream
	Changed   int    // documents whose step list was rewritten
}

// Rewrite parses a config stream, applies the cache-step expansion to every
// pipeline document, and re-serializes the stream in input order. The whole
// stream is parsed before any document is transformed, so a malformed
// document fails the call atomically with no partial output.
func (r *Rewriter) Rewrite(config string) (*Result, error) {
	docs, err := ParseStream(config)
	if err != nil {
		return nil, err
	}

	changed := 0
	out := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		next, rewritten := r.transform(doc)
		if rewritten {
			changed++
		}
		out = append(out, next)
	}

	encoded, err := encodeStream(out)
	if err != nil {
		return nil, err
	}

	return &Result{Config: encoded, Documents: len(docs), Changed: changed}, nil
}
