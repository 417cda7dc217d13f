package schema

// Kind is the expected JSON type of a value.
type Kind string

const (
	Object  Kind = "object"
	Array   Kind = "array"
	String  Kind = "string"
	Number  Kind = "number"
	Integer Kind = "integer"
	Boolean Kind = "boolean"
)

// Schema describes the expected shape of a value. Unset constraint fields
// are not checked.
type Schema struct {
	// Type is the expected JSON type. Required.
	Type Kind

	// Required lists object fields that must be present. Object only.
	Required []string

	// Properties maps object field names to their schemas. Object only.
	// Fields present in the data but absent here pass unchecked.
	Properties map[string]*Schema

	// Items is the schema every array element must satisfy. Array only.
	Items *Schema

	// Enum restricts the value to one of the listed members.
	Enum []any

	// Min and Max bound numeric values, inclusive.
	Min *float64
	Max *float64

	// MinLength and MaxLength bound string length in bytes, inclusive.
	MinLength *int
	MaxLength *int
}

// Ptr returns a pointer to v, for literal constraint construction:
//
//	&Schema{Type: Number, Min: schema.Ptr(0.0), Max: schema.Ptr(10.0)}
func Ptr[T any](v T) *T { return &v }
