package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStream(t *testing.T) {
	t.Parallel()

	t.Run("single document", func(t *testing.T) {
		t.Parallel()

		docs, err := ParseStream("kind: pipeline\nname: default\n")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, map[string]interface{}{"kind": "pipeline", "name": "default"}, docs[0])
	})

	t.Run("multiple documents", func(t *testing.T) {
		t.Parallel()

		docs, err := ParseStream("a: 1\n---\nb: 2\n---\n- list\n")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []interface{}{"list"}, docs[2])
	})

	t.Run("empty stream", func(t *testing.T) {
		t.Parallel()

		docs, err := ParseStream("")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("comments only", func(t *testing.T) {
		t.Parallel()

		docs, err := ParseStream("# nothing to see here\n")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		docs, err := ParseStream("\tkind: pipeline\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config stream")
		assert.Nil(t, docs)
	})
}

func TestEncodeStream(t *testing.T) {
	t.Parallel()

	docs := []interface{}{
		map[string]interface{}{"kind": "pipeline", "steps": []interface{}{"one"}},
		"bare scalar",
	}

	out, err := encodeStream(docs)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.Equal(t, 2, strings.Count(out, "---\n"))

	decoded, err := ParseStream(out)
	require.NoError(t, err)
	assert.Equal(t, docs, decoded)
}

func TestEncodeStreamEmpty(t *testing.T) {
	t.Parallel()

	out, err := encodeStream(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestDeepCopyIsolatesMutations(t *testing.T) {
	t.Parallel()

	original := map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"name": "build", "caches": []interface{}{"npm"}},
		},
		"meta": map[interface{}]interface{}{1: "one"},
	}

	copied := deepCopy(original).(map[string]interface{})
	copied["steps"].([]interface{})[0].(map[string]interface{})["name"] = "mutated"
	copied["meta"].(map[interface{}]interface{})[1] = "two"

	step := original["steps"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "build", step["name"])
	assert.Equal(t, "one", original["meta"].(map[interface{}]interface{})[1])
}
