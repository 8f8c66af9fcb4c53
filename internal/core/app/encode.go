package app

import (
	"bytes"
	"encoding/json"

	"declschema/internal/core/config"
	"declschema/internal/core/errors"
	"declschema/internal/schema"

	"gopkg.in/yaml.v3"
)

// Encode renders s as one complete document. YAML output keeps the key order
// of the JSON encoding.
func Encode(s schema.Schema, format string, pretty bool) ([]byte, error) {
	if s == nil {
		s = schema.Schema{}
	}
	switch format {
	case config.FormatJSON, "":
		return encodeJSON(s, pretty)
	case config.FormatYAML:
		return encodeYAML(s)
	default:
		return nil, errors.Newf(errors.CodeValidationError, "unsupported output format %q", format)
	}
}

func encodeJSON(s schema.Schema, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode json")
	}
	return append(data, '\n'), nil
}

func encodeYAML(s schema.Schema) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode json")
	}

	// JSON is YAML; decoding it into a node tree keeps the key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "convert json to yaml")
	}
	resetStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode yaml")
	}
	return buf.Bytes(), nil
}

// resetStyle drops the flow and quoting styles inherited from JSON. Tags are
// kept so strings that look like other scalars stay quoted.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		resetStyle(child)
	}
}
