package dq

import "gopkg.in/yaml.v3"

// SampleLabRules returns the default rule set for lab specimen data. It is
// used by the CLI when no rules file is given and by `labops rules init`.
func SampleLabRules() []Rule {
	return []Rule{
		{
			Name:        "Required Columns Check",
			Description: "Ensure all required columns are present",
			Kind:        KindRequiredColumns,
			Parameters: map[string]interface{}{
				"columns": []interface{}{"specimen_id", "received_at", "processed_at", "status", "assay_type"},
			},
			Severity: SeverityError,
		},
		{
			Name:        "Timestamp Order Validation",
			Description: "Ensure received_at < processed_at",
			Kind:        KindTimestampOrder,
			Parameters: map[string]interface{}{
				"received_column":  "received_at",
				"processed_column": "processed_at",
			},
			Severity: SeverityError,
		},
		{
			Name:        "No Future Dates",
			Description: "Check for future dates in timestamp columns",
			Kind:        KindNoFutureDates,
			Parameters: map[string]interface{}{
				"columns": []interface{}{"received_at", "processed_at"},
			},
			Severity: SeverityWarning,
		},
		{
			Name:        "Valid Status Values",
			Description: "Ensure status values are valid",
			Kind:        KindAllowedValues,
			Parameters: map[string]interface{}{
				"column":         "status",
				"allowed_values": []interface{}{"received", "in_process", "completed", "error", "cancelled"},
			},
			Severity: SeverityError,
		},
		{
			Name:        "Valid Assay Types",
			Description: "Ensure assay types are valid",
			Kind:        KindAllowedValues,
			Parameters: map[string]interface{}{
				"column":         "assay_type",
				"allowed_values": []interface{}{"blood_chemistry", "hematology", "microbiology", "molecular", "immunology"},
			},
			Severity: SeverityError,
		},
		{
			Name:        "Timestamp Data Types",
			Description: "Ensure timestamp columns are datetime",
			Kind:        KindDataTypes,
			Parameters: map[string]interface{}{
				"columns": map[string]interface{}{
					"received_at":  "datetime",
					"processed_at": "datetime",
				},
			},
			Severity: SeverityError,
		},
		{
			Name:        "Unique Specimen IDs",
			Description: "Ensure specimen IDs are unique",
			Kind:        KindUniqueness,
			Parameters: map[string]interface{}{
				"columns": []interface{}{"specimen_id"},
			},
			Severity: SeverityError,
		},
		{
			Name:        "No Missing Critical Fields",
			Description: "Ensure critical fields have no missing values",
			Kind:        KindCompleteness,
			Parameters: map[string]interface{}{
				"columns":   []interface{}{"specimen_id", "status", "assay_type"},
				"threshold": 0.0,
			},
			Severity: SeverityError,
		},
	}
}

// SampleLabRulesDocument renders the sample rules as a YAML rule document
// suitable for writing to disk and loading back through the catalog loader.
func SampleLabRulesDocument() ([]byte, error) {
	rules := SampleLabRules()
	entries := make([]ruleEntry, len(rules))
	for i, r := range rules {
		entries[i] = ruleEntry{
			Name:        r.Name,
			Description: r.Description,
			RuleType:    string(r.Kind),
			Parameters:  r.Parameters,
			Severity:    string(r.Severity),
		}
	}
	return yaml.Marshal(ruleDocument{Rules: entries})
}
