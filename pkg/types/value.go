package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ValueKind tags the variant held by a ConfigValue
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindBool
	KindInt
	KindList
	KindMappings
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindList:
		return "list"
	case KindMappings:
		return "mappings"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ConfigValue is the closed set of values an entry may carry: a string, a
// boolean, an integer, an ordered list of scalars, or a list of key/value
// mappings. The zero value is KindNull.
type ConfigValue struct {
	kind ValueKind
	str  string
	b    bool
	i    int64
	list []any
	maps []map[string]any
}

func StringValue(s string) ConfigValue { return ConfigValue{kind: KindString, str: s} }

func BoolValue(b bool) ConfigValue { return ConfigValue{kind: KindBool, b: b} }

func IntValue(i int64) ConfigValue { return ConfigValue{kind: KindInt, i: i} }

// ListValue holds scalar list elements in order
func ListValue(items ...any) ConfigValue {
	return ConfigValue{kind: KindList, list: items}
}

// MappingsValue holds the mappings of a custom entry
func MappingsValue(maps ...map[string]any) ConfigValue {
	return ConfigValue{kind: KindMappings, maps: maps}
}

// ValueOf converts a decoded YAML/JSON value into a ConfigValue
func ValueOf(v any) (ConfigValue, error) {
	switch t := v.(type) {
	case nil:
		return ConfigValue{}, nil
	case ConfigValue:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := cast.ToInt64E(t)
		if err != nil {
			return ConfigValue{}, fmt.Errorf("%w: %v", ErrTransform, err)
		}
		return IntValue(i), nil
	case float32, float64:
		// floats are never folded into ints; a YAML scalar keeps its source
		// text through UnmarshalYAML
		return StringValue(strconv.FormatFloat(cast.ToFloat64(t), 'f', -1, 64)), nil
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return ListValue(items...), nil
	case map[string]any:
		return MappingsValue(t), nil
	case []map[string]any:
		return MappingsValue(t...), nil
	case []any:
		return sliceValue(t)
	default:
		return ConfigValue{}, fmt.Errorf("%w: unsupported value type %T", ErrTransform, v)
	}
}

// sliceValue picks the mappings variant when the first non-nil element is a
// mapping. Nil elements are kept as nil mappings and skipped on expansion.
func sliceValue(items []any) (ConfigValue, error) {
	if first := firstNonNil(items); first != nil {
		if _, ok := first.(map[string]any); ok {
			maps := make([]map[string]any, 0, len(items))
			for idx, item := range items {
				m, ok := item.(map[string]any)
				if !ok && item != nil {
					return ConfigValue{}, fmt.Errorf("%w: element %d is %T, want mapping", ErrTransform, idx, item)
				}
				maps = append(maps, m)
			}
			return MappingsValue(maps...), nil
		}
	}
	for idx, item := range items {
		switch item.(type) {
		case []any, map[string]any:
			return ConfigValue{}, fmt.Errorf("%w: list element %d is not a scalar", ErrTransform, idx)
		}
	}
	return ListValue(items...), nil
}

func firstNonNil(items []any) any {
	for _, item := range items {
		if item != nil {
			return item
		}
	}
	return nil
}

// Kind reports the variant held by v
func (v ConfigValue) Kind() ValueKind { return v.kind }

// IsScalar reports whether v renders directly as text
func (v ConfigValue) IsScalar() bool {
	switch v.kind {
	case KindNull, KindString, KindBool, KindInt:
		return true
	}
	return false
}

func (v ConfigValue) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v ConfigValue) AsList() ([]any, bool) {
	return v.list, v.kind == KindList
}

func (v ConfigValue) AsMappings() ([]map[string]any, bool) {
	return v.maps, v.kind == KindMappings
}

// Strings returns the list elements as strings
func (v ConfigValue) Strings() ([]string, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("%w: value is %s, want list", ErrTransform, v.kind)
	}
	out := make([]string, 0, len(v.list))
	for _, item := range v.list {
		s, err := cast.ToStringE(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransform, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Coerce turns boolean and integer scalars into their string form. Other
// variants are returned unchanged.
func (v ConfigValue) Coerce() ConfigValue {
	switch v.kind {
	case KindBool:
		return StringValue(cast.ToString(v.b))
	case KindInt:
		return StringValue(cast.ToString(v.i))
	}
	return v
}

// Interface returns the underlying Go value
func (v ConfigValue) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindList:
		return v.list
	case KindMappings:
		return v.maps
	}
	return nil
}

// String renders v as text. Lists are comma joined; mappings render as
// sorted key=value pairs.
func (v ConfigValue) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindBool, KindInt:
		s, _ := v.Coerce().AsString()
		return s
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = cast.ToString(item)
		}
		return strings.Join(parts, ",")
	case KindMappings:
		var parts []string
		for _, m := range v.maps {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				parts = append(parts, k+"="+cast.ToString(m[k]))
			}
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// UnmarshalYAML decodes any YAML scalar, sequence, or sequence of mappings
func (v *ConfigValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!float" {
		*v = StringValue(node.Value)
		return nil
	}

	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	decoded, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (v ConfigValue) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
