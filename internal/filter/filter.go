// Package filter builds equality filters from allow-listed query parameters.
package filter

import (
	"math"
	"reflect"
)

// Filter maps a field to the value it must equal. Every entry must match.
type Filter map[string]interface{}

// Build keeps the allowed parameters whose query value is present and truthy.
// Absent and falsy values (nil, "", false, numeric zero) are left out entirely,
// so they never constrain the result.
func Build(allowed []string, query map[string]interface{}) Filter {
	f := make(Filter)
	for _, param := range allowed {
		value, ok := query[param]
		if !ok || !Truthy(value) {
			continue
		}
		f[param] = value
	}
	return f
}

// FromQuery is Build over query-string values
func FromQuery(allowed []string, query map[string]string) Filter {
	values := make(map[string]interface{}, len(query))
	for k, v := range query {
		values[k] = v
	}
	return Build(allowed, values)
}

// Columns renames the filter keys through the given mapping.
// Keys without a mapping are kept as they are.
func (f Filter) Columns(mapping map[string]string) Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		if column, ok := mapping[k]; ok {
			out[column] = v
			continue
		}
		out[k] = v
	}
	return out
}

// Truthy reports whether a value counts as supplied
func Truthy(value interface{}) bool {
	if value == nil {
		return false
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		return v.Len() > 0
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !v.IsNil()
	}
	return true
}
