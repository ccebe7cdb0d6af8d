package reactor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	trueLiteralConstant  = "true"
	falseLiteralConstant = "false"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ValueKind identifies the variant held by a property Value.
type ValueKind int

// Supported value kinds.
const (
	KindUndefined ValueKind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindStrings
	KindObject
)

var valueKindNames = map[ValueKind]string{
	KindUndefined: "undefined",
	KindString:    "string",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindStrings:   "string list",
	KindObject:    "object",
}

// String returns the human-readable kind name.
func (kind ValueKind) String() string {
	if name, exists := valueKindNames[kind]; exists {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(kind))
}

// Value is a typed run-context property value.
type Value struct {
	kind    ValueKind
	text    string
	flag    bool
	integer int64
	number  float64
	list    []string
	object  any
}

// StringValue wraps a string.
func StringValue(value string) Value {
	return Value{kind: KindString, text: value}
}

// BoolValue wraps a boolean.
func BoolValue(value bool) Value {
	return Value{kind: KindBool, flag: value}
}

// IntValue wraps an integer.
func IntValue(value int64) Value {
	return Value{kind: KindInt, integer: value}
}

// FloatValue wraps a floating point number.
func FloatValue(value float64) Value {
	return Value{kind: KindFloat, number: value}
}

// StringsValue wraps a string list. The slice is copied.
func StringsValue(values []string) Value {
	copied := make([]string, len(values))
	copy(copied, values)
	return Value{kind: KindStrings, list: copied}
}

// ObjectValue wraps an arbitrary object, such as a structured report. The object is carried untouched.
func ObjectValue(value any) Value {
	return Value{kind: KindObject, object: value}
}

// ValueOf infers the Value variant for common Go types; anything else becomes an object.
func ValueOf(raw any) Value {
	switch typed := raw.(type) {
	case Value:
		return typed
	case string:
		return StringValue(typed)
	case bool:
		return BoolValue(typed)
	case int:
		return IntValue(int64(typed))
	case int32:
		return IntValue(int64(typed))
	case int64:
		return IntValue(typed)
	case float32:
		return FloatValue(float64(typed))
	case float64:
		return FloatValue(typed)
	case []string:
		return StringsValue(typed)
	case []any:
		converted := make([]string, 0, len(typed))
		for _, element := range typed {
			text, isText := element.(string)
			if !isText {
				return ObjectValue(raw)
			}
			converted = append(converted, text)
		}
		return StringsValue(converted)
	default:
		return ObjectValue(raw)
	}
}

// ParseValue interprets command-line or configuration text as the narrowest fitting variant.
// Floats must be finite decimals and booleans are spelled true or false.
func ParseValue(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if parsedInteger, integerError := strconv.ParseInt(trimmed, 10, 64); integerError == nil {
		return IntValue(parsedInteger)
	}
	if decimalPattern.MatchString(trimmed) {
		if parsedFloat, floatError := strconv.ParseFloat(trimmed, 64); floatError == nil {
			return FloatValue(parsedFloat)
		}
	}
	switch {
	case strings.EqualFold(trimmed, trueLiteralConstant):
		return BoolValue(true)
	case strings.EqualFold(trimmed, falseLiteralConstant):
		return BoolValue(false)
	}
	return StringValue(raw)
}

// Kind returns the variant held by the value.
func (value Value) Kind() ValueKind {
	return value.kind
}

// IsDefined reports whether the value holds any variant.
func (value Value) IsDefined() bool {
	return value.kind != KindUndefined
}

// AsString returns the string variant.
func (value Value) AsString() (string, bool) {
	return value.text, value.kind == KindString
}

// AsBool returns the boolean variant.
func (value Value) AsBool() (bool, bool) {
	return value.flag, value.kind == KindBool
}

// AsInt returns the integer variant.
func (value Value) AsInt() (int64, bool) {
	return value.integer, value.kind == KindInt
}

// AsFloat returns the float variant; integers are widened.
func (value Value) AsFloat() (float64, bool) {
	switch value.kind {
	case KindFloat:
		return value.number, true
	case KindInt:
		return float64(value.integer), true
	default:
		return 0, false
	}
}

// AsStrings returns a copy of the string list variant.
func (value Value) AsStrings() ([]string, bool) {
	if value.kind != KindStrings {
		return nil, false
	}
	copied := make([]string, len(value.list))
	copy(copied, value.list)
	return copied, true
}

// AsObject returns the object variant.
func (value Value) AsObject() (any, bool) {
	return value.object, value.kind == KindObject
}

// Interface returns the held value as a plain Go value.
func (value Value) Interface() any {
	switch value.kind {
	case KindString:
		return value.text
	case KindBool:
		return value.flag
	case KindInt:
		return value.integer
	case KindFloat:
		return value.number
	case KindStrings:
		copied, _ := value.AsStrings()
		return copied
	case KindObject:
		return value.object
	default:
		return nil
	}
}

// String renders the value for display.
func (value Value) String() string {
	switch value.kind {
	case KindString:
		return value.text
	case KindBool:
		return strconv.FormatBool(value.flag)
	case KindInt:
		return strconv.FormatInt(value.integer, 10)
	case KindFloat:
		return strconv.FormatFloat(value.number, 'g', -1, 64)
	case KindStrings:
		return strings.Join(value.list, ",")
	case KindObject:
		return fmt.Sprintf("%v", value.object)
	default:
		return ""
	}
}
