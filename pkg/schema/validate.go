package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Validate structurally checks data against s and reports every violation.
func Validate(s *Schema, data any) Result {
	var errs []FieldError
	walk(s, data, "", &errs)
	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}
	return Result{Valid: true, Data: data}
}

// SafeParse parses raw as JSON and validates the result. A parse failure is
// reported as a single root-level error with code parse_error.
func SafeParse(s *Schema, raw string) Result {
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Result{Valid: false, Errors: []FieldError{{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    CodeParse,
		}}}
	}
	return Validate(s, data)
}

// ParseAndValidate is SafeParse for callers that prefer an error return: it
// yields the parsed data or a single error summarizing all violations.
func ParseAndValidate(s *Schema, raw string) (any, error) {
	res := SafeParse(s, raw)
	if !res.Valid {
		return nil, res.Err()
	}
	return res.Data, nil
}

func walk(s *Schema, data any, path string, errs *[]FieldError) {
	if s == nil {
		return
	}

	if len(s.Enum) > 0 {
		found := false
		for _, member := range s.Enum {
			if reflect.DeepEqual(member, data) {
				found = true
				break
			}
		}
		if !found {
			*errs = append(*errs, FieldError{
				Path:    path,
				Message: fmt.Sprintf("value %v is not a permitted enum member", data),
				Code:    CodeEnum,
			})
			return
		}
	}

	switch s.Type {
	case Object:
		obj, ok := data.(map[string]any)
		if !ok {
			typeMismatch(s, data, path, errs)
			return
		}
		for _, field := range s.Required {
			if _, present := obj[field]; !present {
				*errs = append(*errs, FieldError{
					Path:    join(path, field),
					Message: "required field is missing",
					Code:    CodeRequired,
				})
			}
		}
		for field, sub := range s.Properties {
			value, present := obj[field]
			if !present {
				continue
			}
			walk(sub, value, join(path, field), errs)
		}

	case Array:
		arr, ok := data.([]any)
		if !ok {
			typeMismatch(s, data, path, errs)
			return
		}
		if s.Items != nil {
			for i, elem := range arr {
				walk(s.Items, elem, fmt.Sprintf("%s[%d]", path, i), errs)
			}
		}

	case String:
		str, ok := data.(string)
		if !ok {
			typeMismatch(s, data, path, errs)
			return
		}
		if s.MinLength != nil && len(str) < *s.MinLength {
			*errs = append(*errs, FieldError{
				Path:    path,
				Message: fmt.Sprintf("length %d is below minimum %d", len(str), *s.MinLength),
				Code:    CodeMinLength,
			})
		}
		if s.MaxLength != nil && len(str) > *s.MaxLength {
			*errs = append(*errs, FieldError{
				Path:    path,
				Message: fmt.Sprintf("length %d exceeds maximum %d", len(str), *s.MaxLength),
				Code:    CodeMaxLength,
			})
		}

	case Number, Integer:
		num, ok := asFloat(data)
		if !ok {
			typeMismatch(s, data, path, errs)
			return
		}
		if s.Type == Integer && num != float64(int64(num)) {
			*errs = append(*errs, FieldError{
				Path:    path,
				Message: fmt.Sprintf("expected integer, got %v", data),
				Code:    CodeTypeMismatch,
			})
			return
		}
		if s.Min != nil && num < *s.Min {
			*errs = append(*errs, FieldError{
				Path:    path,
				Message: fmt.Sprintf("value %v is below minimum %v", num, *s.Min),
				Code:    CodeMin,
			})
		}
		if s.Max != nil && num > *s.Max {
			*errs = append(*errs, FieldError{
				Path:    path,
				Message: fmt.Sprintf("value %v exceeds maximum %v", num, *s.Max),
				Code:    CodeMax,
			})
		}

	case Boolean:
		if _, ok := data.(bool); !ok {
			typeMismatch(s, data, path, errs)
		}
	}
}

func typeMismatch(s *Schema, data any, path string, errs *[]FieldError) {
	*errs = append(*errs, FieldError{
		Path:    path,
		Message: fmt.Sprintf("expected %s, got %s", s.Type, typeName(data)),
		Code:    CodeTypeMismatch,
	})
}

// asFloat accepts the numeric types JSON decoding and Go callers produce.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// Registry maps schema names to definitions so callers can validate by name.
// It is constructed explicitly and safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register stores a schema under a name, replacing any previous definition.
func (r *Registry) Register(name string, s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = s
}

// Lookup returns a registered schema.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// ValidateByName validates data against the named schema.
func (r *Registry) ValidateByName(name string, data any) (Result, error) {
	s, ok := r.Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("schema %q is not registered", name)
	}
	return Validate(s, data), nil
}
