// Package bindings loads the values a rule program is evaluated against.
//
// A bindings document is a JSON object mapping identifiers to numbers,
// numeric strings or null. The object may be nested inside a larger document
// and selected with a JSONPath expression such as "$.patient.values".
package bindings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/oliveagle/jsonpath"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jvitoroc/gorule/eval"
)

var ErrInvalidBindings = errors.New("invalid bindings")

const schemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"propertyNames": {"pattern": "^[A-Za-z_][A-Za-z0-9_]*$"},
	"additionalProperties": {
		"anyOf": [
			{"type": "number"},
			{"type": "string", "pattern": "^\\s*[-+]?([0-9]+(\\.[0-9]*)?|\\.[0-9]+)([eE][-+]?[0-9]+)?\\s*$"},
			{"type": "null"}
		]
	}
}`

var schema = mustCompileSchema(schemaJSON)

func mustCompileSchema(s string) *gojsonschema.Schema {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}

	return sch
}

// Load reads the bindings document name from fs. path selects the bindings
// object inside the document; an empty path or "$" uses the whole document.
func Load(fs billy.Basic, name, path string) (eval.Bindings, error) {
	doc, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("error reading bindings '%s': %w", name, err)
	}

	values, err := Decode(doc, path)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", name, err)
	}

	return values, nil
}

// Decode parses a bindings document. Numbers are kept as json.Number.
func Decode(doc []byte, path string) (eval.Bindings, error) {
	decoder := json.NewDecoder(bytes.NewReader(doc))
	decoder.UseNumber()

	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBindings, err)
	}

	if path != "" && path != "$" {
		selected, err := jsonpath.JsonPathLookup(v, path)
		if err != nil {
			return nil, fmt.Errorf("%w: path '%s': %v", ErrInvalidBindings, path, err)
		}
		v = selected
	}

	if err := Validate(v); err != nil {
		return nil, err
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", ErrInvalidBindings, v)
	}

	return eval.Bindings(m), nil
}

// Validate checks v against the bindings schema.
func Validate(v any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBindings, err)
	}

	if !result.Valid() {
		var errorMessages strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&errorMessages, "\n- %s", desc)
		}
		return fmt.Errorf("%w:%s", ErrInvalidBindings, errorMessages.String())
	}

	return nil
}
