package dq

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ruleDocumentSchema is the JSON Schema every rule document must satisfy
// before it is decoded. Severity and parameter shapes are checked later so
// their errors can name the offending rule.
const ruleDocumentSchema = `{
	"type": "object",
	"required": ["rules"],
	"properties": {
		"rules": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "description", "rule_type"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"rule_type": {"type": "string", "minLength": 1},
					"parameters": {"type": "object"},
					"severity": {"type": "string"}
				}
			}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func documentSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		loader := gojsonschema.NewSchemaLoader()
		loader.Draft = gojsonschema.Draft7
		compiledSchema, schemaErr = loader.Compile(gojsonschema.NewStringLoader(ruleDocumentSchema))
	})
	return compiledSchema, schemaErr
}

// ruleDocument mirrors the external rule document format. YAML is the
// primary encoding; JSON parses through the same path since YAML is a
// superset.
type ruleDocument struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	RuleType    string                 `yaml:"rule_type"`
	Parameters  map[string]interface{} `yaml:"parameters"`
	Severity    string                 `yaml:"severity"`
}

// ParseRules parses a YAML or JSON rule document into rules. Any defect in
// the document fails the whole parse with a RuleDefinitionError; there are
// no partial results.
func ParseRules(data []byte) ([]Rule, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, NewRuleDefinitionError("unparseable rule document", err)
	}
	if raw == nil {
		return nil, NewRuleDefinitionError("rule document is empty", nil)
	}

	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewRuleDefinitionError("unparseable rule document", err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for _, entry := range doc.Rules {
		severity, err := ParseSeverity(entry.Severity)
		if err != nil {
			return nil, NewRuleDefinitionError("rule "+entry.Name, err)
		}
		rules = append(rules, Rule{
			Name:        entry.Name,
			Description: entry.Description,
			Kind:        RuleKind(entry.RuleType),
			Parameters:  entry.Parameters,
			Severity:    severity,
		})
	}
	return rules, nil
}

// validateDocument checks the decoded document against the rule document
// JSON Schema.
func validateDocument(raw interface{}) error {
	schema, err := documentSchema()
	if err != nil {
		return errors.Wrap(err, "failed to compile rule document schema")
	}

	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return NewRuleDefinitionError("rule document is not a mapping", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return NewRuleDefinitionError("rule document is not a mapping", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return NewRuleDefinitionError(strings.Join(msgs, "; "), nil)
	}
	return nil
}

// LoadRules parses a rule document and appends the parsed rules to the
// catalog. Loads are cumulative; call Reset first to replace the catalog.
// On error the catalog is left unchanged.
func (c *Catalog) LoadRules(data []byte) ([]Rule, error) {
	rules, err := ParseRules(data)
	if err != nil {
		return nil, err
	}
	c.AddRules(rules...)
	return rules, nil
}

// LoadRulesFile loads a rule document from disk into the catalog
func (c *Catalog) LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRuleDefinitionError("failed to read rules file "+path, err)
	}
	return c.LoadRules(data)
}
