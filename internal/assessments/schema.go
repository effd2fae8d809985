package assessments

import "github.com/xeipuuv/gojsonschema"

// recordSchemaJSON describes the minimum a structured reply must satisfy.
// Optional lists are checked field by field during decoding instead, so a
// malformed list does not discard valid scores.
const recordSchemaJSON = `{
  "type": "object",
  "required": ["category_scores"],
  "properties": {
    "readiness_score": {"type": ["number", "null"], "minimum": 0, "maximum": 100},
    "overall_score": {"type": ["number", "null"], "minimum": 0, "maximum": 100},
    "category_scores": {
      "type": "object",
      "required": [
        "regulatory_compliance",
        "market_viability",
        "documentation_readiness",
        "competitive_positioning"
      ],
      "properties": {
        "regulatory_compliance": {"$ref": "#/definitions/score"},
        "market_viability": {"$ref": "#/definitions/score"},
        "documentation_readiness": {"$ref": "#/definitions/score"},
        "competitive_positioning": {"$ref": "#/definitions/score"}
      }
    }
  },
  "definitions": {
    "score": {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var recordSchema = mustSchema(recordSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return schema
}

// validateStructured returns the schema violations of doc, or nil.
func validateStructured(doc map[string]any) []string {
	result, err := recordSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}
	out := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, e.String())
	}
	return out
}
