package rewrite

import (
	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
)

// transform rewrites one parsed document and reports whether anything
// changed. Only string-keyed pipeline documents with a step sequence are
// candidates; everything else passes through untouched. The input document
// graph is never mutated: rewriting happens on a deep copy.
func (r *Rewriter) transform(doc interface{}) (interface{}, bool) {
	original, ok := doc.(map[string]interface{})
	if !ok {
		return doc, false
	}
	if kind, _ := original["kind"].(string); kind != kindPipeline {
		return doc, false
	}
	if _, ok := original["steps"].([]interface{}); !ok {
		return doc, false
	}

	root := deepCopy(original).(map[string]interface{})
	rawSteps := root["steps"].([]interface{})

	// Distinct supported cache kinds requested anywhere in this document.
	used := make(map[string]bool)

	steps := make([]interface{}, 0, len(rawSteps))
	for _, raw := range rawSteps {
		steps = append(steps, r.expandStep(raw, used)...)
	}

	if len(used) == 0 {
		return doc, false
	}

	root["steps"] = steps
	r.declareVolumes(root, used)
	return root, true
}

// expandStep applies the three-step expansion rule. Ineligible steps yield
// themselves; an eligible step yields restore, the step itself, rebuild.
func (r *Rewriter) expandStep(raw interface{}, used map[string]bool) []interface{} {
	step, ok := raw.(map[string]interface{})
	if !ok {
		return []interface{}{raw}
	}

	kinds := r.cacheSet(step["caches"])
	if len(kinds) == 0 {
		return []interface{}{raw}
	}
	for kind := range kinds {
		used[kind] = true
	}

	restore := r.cacheStep(step, "restore", kinds)
	rebuild := r.cacheStep(step, "rebuild", kinds)
	for _, s := range []map[string]interface{}{restore, step, rebuild} {
		r.mountCaches(s, kinds)
	}

	return []interface{}{restore, step, rebuild}
}

// cacheSet reduces a step's caches declaration to the distinct kinds the
// registry supports. A missing or non-sequence declaration, entries that are
// not strings, and unknown kinds all filter down to an empty set rather than
// an error.
func (r *Rewriter) cacheSet(caches interface{}) map[string]bool {
	list, ok := caches.([]interface{})
	if !ok {
		return nil
	}

	set := make(map[string]bool)
	for _, item := range list {
		if kind, ok := item.(string); ok && r.registry.Supported(kind) {
			set[kind] = true
		}
	}
	return set
}

// cacheStep builds the generated restore or rebuild step wrapping a step.
// The plugin mount list follows registry order, not declaration order, and
// each generated step gets its own copy of the pass-through environment.
func (r *Rewriter) cacheStep(step map[string]interface{}, action string, kinds map[string]bool) map[string]interface{} {
	name, _ := step["name"].(string)

	environment := make(map[string]interface{}, len(r.env))
	for key, value := range r.env {
		environment[key] = value
	}

	mounts := make([]interface{}, 0, len(kinds))
	for _, entry := range r.registry.Entries() {
		if kinds[entry.Kind] {
			mounts = append(mounts, entry.Path)
		}
	}

	generated := map[string]interface{}{
		"name":        name + "-cache-" + action,
		"image":       r.image,
		"environment": environment,
		"settings": map[string]interface{}{
			"mount": mounts,
			action:  true,
		},
		"volumes": []interface{}{
			map[string]interface{}{"name": sharedVolume, "path": r.cacheRoot},
		},
	}
	if when, ok := step["when"]; ok {
		generated["when"] = deepCopy(when)
	}
	return generated
}

// mountCaches appends a named volume mount for every rooted cache kind in
// the set, creating the step's volume list when it has none. Kinds with
// workspace-relative directories get no mount.
func (r *Rewriter) mountCaches(step map[string]interface{}, kinds map[string]bool) {
	mounts := make([]interface{}, 0, len(kinds))
	for _, entry := range r.registry.Entries() {
		if kinds[entry.Kind] && cachedir.Rooted(entry.Path) {
			mounts = append(mounts, map[string]interface{}{
				"name": entry.Kind,
				"path": entry.Path,
			})
		}
	}
	if len(mounts) == 0 {
		return
	}

	volumes, _ := step["volumes"].([]interface{})
	step["volumes"] = append(volumes, mounts...)
}

// declareVolumes appends the document-level volumes the generated steps
// mount: the host-backed shared cache volume, then one ephemeral volume per
// distinct rooted cache kind used in the document.
func (r *Rewriter) declareVolumes(root map[string]interface{}, used map[string]bool) {
	volumes, _ := root["volumes"].([]interface{})
	volumes = append(volumes, map[string]interface{}{
		"name": sharedVolume,
		"host": map[string]interface{}{"path": r.cachePath},
	})
	for _, entry := range r.registry.Entries() {
		if used[entry.Kind] && cachedir.Rooted(entry.Path) {
			volumes = append(volumes, map[string]interface{}{
				"name": entry.Kind,
				"temp": map[string]interface{}{},
			})
		}
	}
	root["volumes"] = volumes
}
