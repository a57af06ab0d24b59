package identifier

import (
	"reflect"
	"strconv"
	"strings"
)

// Resolvable lets a subject expose fields to property paths without
// reflection. Field returns false when name is unknown.
type Resolvable interface {
	Field(name string) (any, bool)
}

// Mapper lets a subject present itself as a map for property paths.
type Mapper interface {
	AsMap() (map[string]any, bool)
}

// ResolvableFunc adapts a function to Resolvable.
type ResolvableFunc func(name string) (any, bool)

// Field implements Resolvable.
func (f ResolvableFunc) Field(name string) (any, bool) {
	return f(name)
}

// Walk follows path starting at subject and returns the terminal value.
// It returns false as soon as a segment cannot be read.
func Walk(subject any, path []string) (any, bool) {
	cur := subject
	for _, segment := range path {
		next, ok := lookup(cur, segment)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// lookup reads a single segment from v. A typed nil never resolves, and a
// panicking accessor counts as an unreadable segment.
func lookup(v any, name string) (val any, ok bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	outer := rv
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		outer = rv
		rv = rv.Elem()
	}

	defer func() {
		if recover() != nil {
			val, ok = nil, false
		}
	}()

	if r, isRes := v.(Resolvable); isRes {
		return r.Field(name)
	}
	if m, isMap := v.(Mapper); isMap {
		if mm, isSet := m.AsMap(); isSet {
			val, found := mm[name]
			return val, found
		}
	}

	switch rv.Kind() {
	case reflect.Struct:
		if val, ok := fieldValue(rv, name); ok {
			return val, true
		}
		if outer.Kind() == reflect.Pointer {
			return methodValue(outer, name)
		}
		return methodValue(rv, name)
	case reflect.Map:
		return mapValue(rv, name)
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	default:
		return nil, false
	}
}

// fieldValue matches an exported field by name, case-insensitively, then by
// json tag.
func fieldValue(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()

	if f, ok := rt.FieldByName(name); ok && f.IsExported() {
		if fv, err := rv.FieldByIndexErr(f.Index); err == nil {
			return fv.Interface(), true
		}
		return nil, false
	}

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.EqualFold(f.Name, name) || jsonName(f) == name {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// methodValue calls an exported zero-argument accessor such as ID() or
// Customer(). Accessors returning (T, error) count only when error is nil.
func methodValue(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		mv := rv.Method(i)
		mt := mv.Type()
		if mt.NumIn() != 0 {
			return nil, false
		}
		switch mt.NumOut() {
		case 1:
			return mv.Call(nil)[0].Interface(), true
		case 2:
			if !mt.Out(1).Implements(errorType) {
				return nil, false
			}
			out := mv.Call(nil)
			if !out[1].IsNil() {
				return nil, false
			}
			return out[0].Interface(), true
		default:
			return nil, false
		}
	}
	return nil, false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func mapValue(rv reflect.Value, name string) (any, bool) {
	kt := rv.Type().Key()

	var key reflect.Value
	switch {
	case kt.Kind() == reflect.String:
		key = reflect.ValueOf(name).Convert(kt)
	case kt.Kind() == reflect.Interface:
		key = reflect.ValueOf(name)
	default:
		return nil, false
	}

	val := rv.MapIndex(key)
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}
