// Package json provides a JSON codec for dump envelopes.
package json

import (
	"github.com/goccy/go-json"
	"github.com/zoobzio/dumper"
)

// jsonCodec implements dumper.Codec for JSON.
type jsonCodec struct {
	indent string
}

// New returns a compact JSON codec.
func New() dumper.Codec {
	return &jsonCodec{}
}

// NewIndented returns a JSON codec that indents nested values with indent.
func NewIndented(indent string) dumper.Codec {
	return &jsonCodec{indent: indent}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON. Envelopes stay on one line unless indented.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	if c.indent != "" {
		return json.MarshalIndent(v, "", c.indent)
	}
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v. Numbers in untyped values decode as float64.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
