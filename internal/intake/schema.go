package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

const schemaURL = "https://reliefscout.local/schemas/classification-record.schema.json"

// RecordSchema is the JSON Schema the classifier output must satisfy
const RecordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "ClassificationRecord",
  "type": "object",
  "properties": {
    "request_id": {"type": ["string", "null"]},
    "timestamp": {"type": ["string", "null"]},
    "source_platform": {"type": ["string", "null"]},
    "source_language": {"type": ["string", "null"]},
    "original_text": {"type": ["string", "null"]},
    "normalized_text": {"type": ["string", "null"]},
    "disaster_type": {
      "enum": ["earthquake", "flood", "hurricane", "wildfire", "tsunami", "tornado", "landslide", "drought", "other", "unknown", null]
    },
    "need_type": {
      "enum": ["medical", "food", "water", "shelter", "rescue", "evacuation", "supplies", "information", "other", "unknown", null]
    },
    "urgency": {"enum": ["critical", "high", "medium", "low", null]},
    "people_affected": {"type": ["integer", "null"], "minimum": 0},
    "vulnerable_groups": {
      "type": ["array", "null"],
      "items": {"enum": ["children", "elderly", "disabled", "pregnant", "injured"]}
    },
    "location": {
      "type": ["object", "null"],
      "properties": {
        "raw_text": {"type": ["string", "null"]},
        "latitude": {"type": ["number", "null"], "minimum": -90, "maximum": 90},
        "longitude": {"type": ["number", "null"], "minimum": -180, "maximum": 180},
        "city": {"type": ["string", "null"]},
        "region": {"type": ["string", "null"]},
        "country": {"type": ["string", "null"]}
      }
    },
    "contact_info": {"type": ["string", "null"]},
    "confidence": {"type": ["number", "null"], "minimum": 0, "maximum": 1},
    "flags": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

// SchemaValidator checks classifier output before it becomes a record
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles RecordSchema
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(RecordSchema)); err != nil {
		return nil, fmt.Errorf("record schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("record schema compile failed: %w", err)
	}
	return &SchemaValidator{schema: compiled}, nil
}

// Decode validates raw JSON against the schema and decodes it. Markdown code
// fences around the object are tolerated.
func (v *SchemaValidator) Decode(raw string) (*model.ClassificationRecord, error) {
	body := []byte(stripFences(raw))

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("classifier returned invalid JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("classifier output failed schema validation: %w", err)
	}

	var rec model.ClassificationRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
