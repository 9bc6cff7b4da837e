package agent

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// gameStartedSchema describes the single game_started argument.
const gameStartedSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["mapWidth", "mapHeight"],
  "properties": {
    "mapWidth":  {"type": "integer", "minimum": 1},
    "mapHeight": {"type": "integer", "minimum": 1},
    "king": {
      "type": "object",
      "properties": {"x": {"type": "integer"}, "y": {"type": "integer"}}
    }
  }
}`

// gameUpdateSchema describes the game_update argument list:
// [patch, turn, leaderboard].
const gameUpdateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 3,
  "prefixItems": [
    {
      "type": "array",
      "items": {
        "oneOf": [
          {"type": "integer", "minimum": 0},
          {
            "type": "array",
            "minItems": 3,
            "maxItems": 3,
            "prefixItems": [
              {"type": "integer", "minimum": 0, "maximum": 6},
              {"type": ["integer", "null"]},
              {"type": ["integer", "null"]}
            ]
          }
        ]
      }
    },
    {"type": "integer", "minimum": 0},
    {
      "type": "array",
      "items": {
        "type": "array",
        "minItems": 3,
        "prefixItems": [{"type": "integer"}, {"type": "integer"}, {"type": "integer"}]
      }
    }
  ]
}`

// validator checks inbound payloads before they reach the decoders.
type validator struct {
	started *jsonschema.Schema
	update  *jsonschema.Schema
}

func newValidator() (*validator, error) {
	started, err := jsonschema.CompileString("game_started.schema.json", gameStartedSchema)
	if err != nil {
		return nil, fmt.Errorf("compile game_started schema: %w", err)
	}
	update, err := jsonschema.CompileString("game_update.schema.json", gameUpdateSchema)
	if err != nil {
		return nil, fmt.Errorf("compile game_update schema: %w", err)
	}
	return &validator{started: started, update: update}, nil
}

// validateDoc checks a single JSON value.
func validateDoc(s *jsonschema.Schema, raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return s.Validate(doc)
}

// validateArgs checks an event's argument list as one JSON array.
func validateArgs(s *jsonschema.Schema, args []json.RawMessage) error {
	docs := make([]any, len(args))
	for i, r := range args {
		if err := json.Unmarshal(r, &docs[i]); err != nil {
			return err
		}
	}
	return s.Validate(docs)
}
