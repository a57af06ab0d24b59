package identifier

import (
	"reflect"
)

// Keyed is implemented by entities exposing an identity, such as models.
// A resolved value implementing Keyed is replaced by its key.
type Keyed interface {
	Key() any
}

// IsEmpty reports whether v must not be used as an identifier value.
// nil, typed nil pointers, "", "0", false, numeric zero and empty
// slices, maps and arrays are empty.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}

	switch x := v.(type) {
	case string:
		return x == "" || x == "0"
	case []byte:
		return len(x) == 0 || string(x) == "0"
	case bool:
		return !x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.String:
		return rv.String() == "" || rv.String() == "0"
	case reflect.Func:
		return rv.IsNil()
	}
	return false
}

// unwrapKey substitutes the key of a Keyed value.
func unwrapKey(v any) any {
	if k, ok := v.(Keyed); ok && !isNilPointer(v) {
		return k.Key()
	}
	return v
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
