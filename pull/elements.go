package pull

import "reflect"

// Elements reports v as a []U when U is an interface type and v is a slice
// whose elements all satisfy U. Flat-map stages use it so a []int result is
// flattened when the element type is any.
func Elements[U any](v any) ([]U, bool) {
	if reflect.TypeFor[U]().Kind() != reflect.Interface {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]U, rv.Len())
	for i := range out {
		e := rv.Index(i).Interface()
		if e == nil {
			continue
		}
		u, ok := e.(U)
		if !ok {
			return nil, false
		}
		out[i] = u
	}
	return out, true
}
