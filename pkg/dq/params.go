package dq

import "fmt"

// Parameter accessors used by the validators. Rule parameters arrive as an
// open mapping from the loader (or from callers constructing rules in code);
// these helpers narrow them to the shapes each kind expects. A value of the
// wrong shape is a ValidatorFault; a merely absent optional value is not.

// paramToString renders any scalar parameter value as a string
func paramToString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// stringParam reads an optional string parameter
func stringParam(rule Rule, key string) (string, bool, error) {
	v, ok := rule.Parameters[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, NewValidatorFault(rule, "parameter %q must be a string, got %T", key, v)
	}
	return s, true, nil
}

// requiredStringParam reads a string parameter that has no sensible default
func requiredStringParam(rule Rule, key string) (string, error) {
	s, ok, err := stringParam(rule, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", NewValidatorFault(rule, "parameter %q is required", key)
	}
	return s, nil
}

// stringListParam reads an optional list parameter, stringifying scalar
// entries. Absent lists report ok=false so callers can apply defaults.
func stringListParam(rule Rule, key string) ([]string, bool, error) {
	v, ok := rule.Parameters[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), true, nil
	case []interface{}:
		out := make([]string, len(list))
		for i, item := range list {
			out[i] = paramToString(item)
		}
		return out, true, nil
	default:
		return nil, false, NewValidatorFault(rule, "parameter %q must be a list, got %T", key, v)
	}
}

// stringMapParam reads an optional string-to-string mapping parameter
func stringMapParam(rule Rule, key string) (map[string]string, bool, error) {
	v, ok := rule.Parameters[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true, nil
	case map[string]interface{}:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = paramToString(val)
		}
		return out, true, nil
	default:
		return nil, false, NewValidatorFault(rule, "parameter %q must be a mapping, got %T", key, v)
	}
}

// numberParam reads an optional numeric parameter. YAML decodes integers and
// floats to distinct Go types, so both are accepted.
func numberParam(rule Rule, key string) (float64, bool, error) {
	v, ok := rule.Parameters[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	default:
		return 0, false, NewValidatorFault(rule, "parameter %q must be a number, got %T", key, v)
	}
}
