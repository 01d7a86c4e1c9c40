package codec

import (
	"bytes"
	"encoding/gob"
)

// Gob is a binary codec backed by encoding/gob.
//
// The wire shape is fixed by the Go types being encoded, so values must be
// decoded into the same types they were encoded from. Interface-typed values
// need gob.Register.
type Gob struct{}

// Marshal encodes the value with gob.
func (Gob) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes gob data into v.
func (Gob) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Name returns the unique name of the codec ("gob").
func (Gob) Name() string { return "gob" }
