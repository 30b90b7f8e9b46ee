// Package xml provides an XML codec for dump envelopes.
//
// XML cannot carry untyped maps, so envelope context and node attributes are
// left out, and scalar node values come back empty. Use it for archiving
// dump structure, not for full round trips.
package xml

import (
	"bytes"
	"encoding/xml"

	"github.com/zoobzio/dumper"
)

// xmlCodec implements dumper.Codec for XML.
type xmlCodec struct{}

// New returns an XML codec.
func New() dumper.Codec {
	return &xmlCodec{}
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as an XML document with a declaration.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body))
	buf.WriteString(xml.Header)
	buf.Write(body)
	return buf.Bytes(), nil
}

// Unmarshal decodes XML data into v.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}
