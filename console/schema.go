package console

import (
	"encoding/json"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// saveSchema constrains the wire shape of save payloads beyond what the
// struct-level rules can express: fragment records must carry string values
// and nothing else rides along unnoticed.
const saveSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["key", "sections"],
	"properties": {
		"key": {"type": "string", "minLength": 1},
		"actor": {"type": "string"},
		"sections": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "data"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"data": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["source_value", "target_value"],
							"properties": {
								"source_value": {"type": "string"},
								"target_value": {"type": "string"}
							}
						}
					}
				}
			}
		}
	}
}`

var (
	saveSchemaOnce     sync.Once
	saveSchemaCompiled *jsonschema.Schema
	saveSchemaErr      error
)

func compiledSaveSchema() (*jsonschema.Schema, error) {
	saveSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("save.json", strings.NewReader(saveSchema)); err != nil {
			saveSchemaErr = err
			return
		}
		saveSchemaCompiled, saveSchemaErr = compiler.Compile("save.json")
	})
	return saveSchemaCompiled, saveSchemaErr
}

// validateSavePayload runs the request through the wire schema. The request is
// round-tripped through JSON so the schema sees exactly what an HTTP layer
// would submit.
func validateSavePayload(req SaveRequest) error {
	compiled, err := compiledSaveSchema()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(req)
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return err
	}
	return compiled.Validate(payload)
}
