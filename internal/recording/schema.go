package recording

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://rewind.local/schemas/recording.schema.json"

const schemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["config", "events", "snapshots", "stats"],
  "additionalProperties": false,
  "properties": {
    "config": {
      "type": "object",
      "required": ["app_name", "capture"],
      "properties": {
        "app_name": {"type": "string"},
        "capture": {
          "type": "object",
          "properties": {
            "events": {"type": "boolean"},
            "snapshots": {"type": "boolean"},
            "mouse_moves": {"type": "boolean"}
          }
        }
      }
    },
    "events": {"type": "array", "items": {"$ref": "#/$defs/event"}},
    "snapshots": {"type": "array", "items": {"$ref": "#/$defs/snapshot"}},
    "stats": {
      "type": "object",
      "required": ["total_events", "total_snapshots", "duration"],
      "properties": {
        "total_events": {"type": "integer", "minimum": 0},
        "total_snapshots": {"type": "integer", "minimum": 0},
        "duration": {"$ref": "#/$defs/timestamp"}
      }
    }
  },
  "$defs": {
    "timestamp": {"type": "integer", "minimum": 0},
    "event": {
      "type": "object",
      "required": ["timestamp", "kind", "data"],
      "properties": {
        "timestamp": {"$ref": "#/$defs/timestamp"},
        "kind": {"enum": [%s]},
        "data": {"type": "object"}
      }
    },
    "snapshot": {
      "type": "object",
      "required": ["timestamp", "window"],
      "properties": {
        "timestamp": {"$ref": "#/$defs/timestamp"},
        "root": {"$ref": "#/$defs/element"},
        "focused": {"type": "string"},
        "hovered": {"type": "string"},
        "window": {
          "type": "object",
          "required": ["width", "height"],
          "properties": {
            "width": {"type": "number"},
            "height": {"type": "number"},
            "scale_factor": {"type": "number"}
          }
        }
      }
    },
    "element": {
      "type": "object",
      "required": ["id", "type", "bounds"],
      "properties": {
        "id": {"type": "string"},
        "type": {"type": "string"},
        "bounds": {
          "type": "object",
          "required": ["x", "y", "width", "height"],
          "properties": {
            "x": {"type": "number"},
            "y": {"type": "number"},
            "width": {"type": "number"},
            "height": {"type": "number"}
          }
        },
        "styles": {"type": "object", "additionalProperties": {"type": "string"}},
        "text": {"type": "string"},
        "children": {"type": "array", "items": {"$ref": "#/$defs/element"}}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// documentSchema compiles the recording schema on first use.
func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		kinds := make([]string, len(Kinds))
		for i, k := range Kinds {
			kinds[i] = fmt.Sprintf("%q", k)
		}
		src := fmt.Sprintf(schemaSource, strings.Join(kinds, ", "))

		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(src)); err != nil {
			schemaErr = fmt.Errorf("recording schema load failed: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("recording schema compile failed: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}
