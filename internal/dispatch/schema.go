package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaSet holds the compiled jsonschema validators for every request body
// that carries a closed enum or a bounded numeric range. Decoding into the
// Go struct happens separately (encoding/json); these schemas catch the
// cases a plain struct decode lets through silently (an unknown enum value
// decodes fine into a string field) before the value reaches handler logic.
type schemaSet struct {
	click               *jsonschema.Schema
	typeReq             *jsonschema.Schema
	key                 *jsonschema.Schema
	scroll              *jsonschema.Schema
	wait                *jsonschema.Schema
	accessibilityAction *jsonschema.Schema
}

const (
	schemaClick               = "mem://click.json"
	schemaType                = "mem://type.json"
	schemaKey                 = "mem://key.json"
	schemaScroll              = "mem://scroll.json"
	schemaWait                = "mem://wait.json"
	schemaAccessibilityAction = "mem://accessibility_action.json"
)

var rawSchemas = map[string]string{
	schemaClick: `{
		"type": "object",
		"properties": {
			"x": {"type": "number", "minimum": 0},
			"y": {"type": "number", "minimum": 0},
			"button": {"enum": ["left", "right", "center", ""]},
			"click_count": {"type": "integer", "minimum": 1}
		},
		"required": ["x", "y"]
	}`,
	schemaType: `{
		"type": "object",
		"properties": {
			"text": {"type": "string", "minLength": 1},
			"mode": {"enum": ["replace", "keys", ""]}
		},
		"required": ["text"]
	}`,
	schemaKey: `{
		"type": "object",
		"properties": {
			"key": {"type": "string", "minLength": 1}
		},
		"required": ["key"]
	}`,
	schemaScroll: `{
		"type": "object",
		"properties": {
			"delta_x": {"type": "number"},
			"delta_y": {"type": "number"}
		}
	}`,
	schemaWait: `{
		"type": "object",
		"properties": {
			"timeout_ms": {"type": "integer", "minimum": 1, "maximum": 60000},
			"poll_interval_ms": {"type": "integer", "minimum": 1, "maximum": 5000},
			"condition": {"enum": ["exists", "not_exists", "enabled", "focused", ""]}
		}
	}`,
	schemaAccessibilityAction: `{
		"type": "object",
		"properties": {
			"action": {"enum": ["press", "setValue", "focus", "confirm", "cancel", "increment", "decrement", "showMenu", "pick"]}
		},
		"required": ["action"]
	}`,
}

func compileSchemas() (*schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	for url, raw := range rawSchemas {
		if err := compiler.AddResource(url, bytes.NewReader([]byte(raw))); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", url, err)
		}
	}

	compile := func(url string) (*jsonschema.Schema, error) {
		s, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", url, err)
		}
		return s, nil
	}

	var (
		set schemaSet
		err error
	)
	if set.click, err = compile(schemaClick); err != nil {
		return nil, err
	}
	if set.typeReq, err = compile(schemaType); err != nil {
		return nil, err
	}
	if set.key, err = compile(schemaKey); err != nil {
		return nil, err
	}
	if set.scroll, err = compile(schemaScroll); err != nil {
		return nil, err
	}
	if set.wait, err = compile(schemaWait); err != nil {
		return nil, err
	}
	if set.accessibilityAction, err = compile(schemaAccessibilityAction); err != nil {
		return nil, err
	}
	return &set, nil
}

// validateAgainst decodes body into a generic document and runs schema
// validation, returning a human-readable error on the first violation.
func validateAgainst(schema *jsonschema.Schema, body []byte) error {
	if len(body) == 0 {
		body = []byte("{}")
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return nil
}
