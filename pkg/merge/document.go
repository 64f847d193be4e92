package merge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mitchellh/copystructure"
)

// Document is a decoded JSON object.
// Numbers are kept as json.Number so they are written back unchanged.
type Document map[string]any

// Section keys folded from every fragment.
const (
	KeyPaths           = "paths"
	KeyComponents      = "components"
	KeySchemas         = "schemas"
	KeySecuritySchemes = "securitySchemes"
)

// Parse decodes data into a Document.
// The top level value must be an object and nothing may follow it.
func Parse(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotObject
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}

	return doc, nil
}

// Copy returns a deep copy of d sharing no maps or slices with it.
func (d Document) Copy() (Document, error) {
	res, err := copystructure.Copy(d)
	if err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	return res.(Document), nil
}

// Render encodes d as JSON indented with two spaces.
// Keys are sorted, HTML characters are not escaped and there is no trailing newline.
func (d Document) Render() ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(d); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// PathCount is the number of entries in the paths section.
func (d Document) PathCount() int {
	paths, _ := d[KeyPaths].(map[string]any)
	return len(paths)
}

// SchemaCount is the number of entries in components.schemas.
func (d Document) SchemaCount() int {
	components, _ := d[KeyComponents].(map[string]any)
	schemas, _ := components[KeySchemas].(map[string]any)
	return len(schemas)
}
