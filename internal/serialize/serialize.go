// Package serialize converts typed resource declarations into CloudFormation property maps.
package serialize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Properties serializes a resource struct to CloudFormation resource properties.
// It handles:
// - json tag names (BucketName, DBInstanceClass)
// - omitting nil/zero values of omitempty fields
// - intrinsic functions (anything implementing json.Marshaler)
// - nested structs, slices and maps
func Properties(v any) (map[string]any, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("serialize: nil %T", v)
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("serialize: expected struct, got %s", val.Kind())
	}

	return structToMap(val)
}

func structToMap(val reflect.Value) (map[string]any, error) {
	result := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		name, omitEmpty := fieldName(field)
		if name == "-" {
			continue
		}

		if omitEmpty && isZeroValue(fieldVal) {
			continue
		}

		serialized, err := serializeValue(fieldVal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		if serialized != nil {
			result[name] = serialized
		}
	}

	return result, nil
}

// fieldName returns the JSON field name for a struct field and whether it is omitempty.
func fieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = field.Name
	}

	omitEmpty := false
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

// isZeroValue reports whether an omitempty field should be dropped.
// Interfaces are only empty when nil, so an `any` field holding false is kept.
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		if v.CanInterface() {
			if zeroer, ok := v.Interface().(interface{ IsZero() bool }); ok {
				return zeroer.IsZero()
			}
		}
		return false
	default:
		return false
	}
}

// serializeValue converts a reflect.Value to a JSON-compatible value.
func serializeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		if v.Kind() == reflect.Ptr {
			if m, ok := asMarshaler(v); ok {
				return marshalThrough(m)
			}
		}
		return serializeValue(v.Elem())
	}

	if m, ok := asMarshaler(v); ok {
		return marshalThrough(m)
	}

	switch v.Kind() {
	case reflect.Struct:
		return structToMap(v)

	case reflect.Slice, reflect.Array:
		result := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := serializeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case reflect.Map:
		result := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			val, err := serializeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			result[key] = val
		}
		return result, nil

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	default:
		return nil, fmt.Errorf("unsupported kind %s", v.Kind())
	}
}

func asMarshaler(v reflect.Value) (json.Marshaler, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	m, ok := v.Interface().(json.Marshaler)
	return m, ok
}

// marshalThrough renders an intrinsic through its own MarshalJSON so that
// {"Ref": ...} and {"Fn::GetAtt": [...]} keep their CloudFormation shape.
func marshalThrough(m json.Marshaler) (any, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}
