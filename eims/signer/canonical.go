package signer

import (
	"bytes"
	"encoding/json"

	"github.com/go-faster/errors"
)

// Canonicalize renders v as canonical JSON: UTF-8, lexically sorted object
// keys, no insignificant whitespace. The remote verifies the signature over
// exactly this form, so the output must be byte-stable across runs and
// struct field orderings.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	// Round-trip through an untyped tree: Go sorts map keys on marshal and
	// json.Number keeps numeric literals verbatim.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, errors.Wrap(err, "decode request tree")
	}

	out, err := json.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(err, "marshal canonical form")
	}
	return out, nil
}
