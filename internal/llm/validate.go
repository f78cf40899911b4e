package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// validators holds compiled schemas keyed by name and definition digest, so
// two schemas sharing a name never validate against each other's rules.
var validators sync.Map // map[string]*jsonschema.Schema

// validateResponse checks a structured reply against schema. A nil schema
// accepts anything. Failures are reported as *ErrInvalidResponse so the
// retry decorator can ask the model once more.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	reply, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: invalid JSON: %w", schema.Name, err)}
	}

	v, err := compileSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := v.Validate(reply); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: %w", schema.Name, err)}
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %s: marshal definition: %w", schema.Name, err)
	}
	sum := sha256.Sum256(def)
	key := schema.Name + "-" + hex.EncodeToString(sum[:8])

	if v, ok := validators.Load(key); ok {
		return v.(*jsonschema.Schema), nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("schema %s: parse definition: %w", schema.Name, err)
	}
	url := "mem://schemas/" + key + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("schema %s: %w", schema.Name, err)
	}
	v, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: compile: %w", schema.Name, err)
	}

	actual, _ := validators.LoadOrStore(key, v)
	return actual.(*jsonschema.Schema), nil
}
