package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseStream decodes a possibly multi-document YAML stream into generic
// document trees. The stream is consumed in full before returning, so a
// malformed document anywhere fails the whole call.
func ParseStream(config string) ([]interface{}, error) {
	decoder := yaml.NewDecoder(strings.NewReader(config))

	var docs []interface{}
	for {
		var doc interface{}
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config stream: %w", err)
		}
		docs = append(docs, doc)
	}
}

// encodeStream serializes documents back into one stream in order. Every
// document is preceded by an explicit separator, indented two spaces, and
// emitted as an independent literal value with no anchors or aliases.
func encodeStream(docs []interface{}) (string, error) {
	var buf bytes.Buffer
	for _, doc := range docs {
		buf.WriteString("---\n")

		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			encoder.Close()
			return "", fmt.Errorf("failed to serialize config stream: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return "", fmt.Errorf("failed to serialize config stream: %w", err)
		}
	}
	return buf.String(), nil
}

// deepCopy clones a decoded document tree. Decoded YAML values are only
// mappings, sequences, and scalars, so a structural switch covers them all.
func deepCopy(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for key, item := range typed {
			out[key] = deepCopy(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[interface{}]interface{}, len(typed))
		for key, item := range typed {
			out[key] = deepCopy(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return value
	}
}
