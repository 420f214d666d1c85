package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Compiled is a parsed JSON schema reusable across many documents.
type Compiled struct {
	schema *gojsonschema.Schema
}

// Compile parses a JSON schema file once for repeated validation.
func Compile(schemaPath string) (*Compiled, error) {
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", schemaPath, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", schemaPath, err)
	}
	return &Compiled{schema: schema}, nil
}

// ValidateBytes validates a raw JSON document against the compiled schema.
func (c *Compiled) ValidateBytes(document []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	return collectIssues(result)
}

// ValidateFile validates a JSON document file against the compiled schema.
func (c *Compiled) ValidateFile(path string) error {
	document, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document %s: %w", path, err)
	}
	if err := c.ValidateBytes(document); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidateAgainstSchema validates an arbitrary payload against a JSON schema file.
func ValidateAgainstSchema(schemaPath string, payload interface{}) error {
	compiled, err := Compile(schemaPath)
	if err != nil {
		return err
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return compiled.ValidateBytes(payloadBytes)
}

func collectIssues(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, issue := range result.Errors() {
		issues = append(issues, issue.String())
	}
	return fmt.Errorf("document failed schema validation: %s", strings.Join(issues, "; "))
}
