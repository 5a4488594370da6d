package views

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// deref unwraps pointers and interfaces. ok is false for nil values.
func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

// Compare orders two non-nil column values. Times compare by instant,
// numbers numerically, everything else by its string form.
func Compare(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(ra) && isInt(rb):
		return cmp.Compare(ra.Int(), rb.Int())
	case isUint(ra) && isUint(rb):
		return cmp.Compare(ra.Uint(), rb.Uint())
	case isNumber(ra) && isNumber(rb):
		return cmp.Compare(toFloat(ra), toFloat(rb))
	case ra.Kind() == reflect.Bool && rb.Kind() == reflect.Bool:
		return cmp.Compare(boolInt(ra.Bool()), boolInt(rb.Bool()))
	case ra.Kind() == reflect.String && rb.Kind() == reflect.String:
		return strings.Compare(ra.String(), rb.String())
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Stringify renders a column value for filtering. nil renders as "".
func Stringify(v any) string {
	val, ok := deref(v)
	if !ok {
		return ""
	}
	switch t := val.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	case []string:
		return strings.Join(t, ", ")
	case string:
		return t
	}
	return fmt.Sprint(val)
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || isUint(v) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v):
		return float64(v.Int())
	case isUint(v):
		return float64(v.Uint())
	}
	return v.Float()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
