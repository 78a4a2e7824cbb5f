package blackboard

// Kind tags the five scalar value kinds the blackboard can store.
type Kind int

const (
	KindString Kind = iota
	KindInt32
	KindFloat32
	KindFloat64
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// jsonSchemaType returns the JSON Schema draft-07 "type" for k: float32
// and float64 both render as "number".
func (k Kind) jsonSchemaType() (string, bool) {
	switch k {
	case KindString:
		return "string", true
	case KindInt32:
		return "integer", true
	case KindFloat32, KindFloat64:
		return "number", true
	case KindBool:
		return "boolean", true
	default:
		return "", false
	}
}

// Value is a tagged variant over the five scalar kinds. Modeling it this
// way (rather than an opaque pointer-and-type-id pair, or Go's bare
// interface{}) keeps each typed getter a single switch arm that returns
// ErrTypeMismatch on the wrong kind, per the "Runtime-typed storage"
// design note.
type Value struct {
	kind Kind
	str  string
	i32  int32
	f32  float32
	f64  float64
	b    bool
}

func stringValue(v string) Value  { return Value{kind: KindString, str: v} }
func int32Value(v int32) Value    { return Value{kind: KindInt32, i32: v} }
func float32Value(v float32) Value { return Value{kind: KindFloat32, f32: v} }
func float64Value(v float64) Value { return Value{kind: KindFloat64, f64: v} }
func boolValue(v bool) Value      { return Value{kind: KindBool, b: v} }

// Kind reports the value's runtime kind.
func (v Value) Kind() Kind { return v.kind }

// Any returns the value boxed as its native Go type, for JSON rendering
// and tests.
func (v Value) Any() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt32:
		return v.i32
	case KindFloat32:
		return v.f32
	case KindFloat64:
		return v.f64
	case KindBool:
		return v.b
	default:
		return nil
	}
}
