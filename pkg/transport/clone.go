// Package transport implements the two concerns of crossing the
// Controller/Executor boundary: Clone (deep-copy of structured data) and
// Transfer (zero-copy ownership handoff of byte buffers), plus the File,
// Run, and error record shapes that ride on top of them.
//
// Go has no structured-clone primitive, so Clone is implemented here with
// reflection over a fixed clonable value universe: nil, bool, numbers,
// strings, time.Time, byte slices, ordered sequences, maps, and plain
// structs. Intra-graph reference sharing (two fields pointing at the
// same object) is preserved within a single Clone call by tracking
// pointers already visited.
package transport

import (
	"reflect"
	"time"
)

// opaqueValueTypes are immutable value types the universe treats as
// clonable leaves (dates) even though they carry unexported fields a
// generic struct clone would zero out. A plain Go value-copy (the struct
// assignment below) is their clone.
var opaqueValueTypes = map[reflect.Type]bool{
	reflect.TypeOf(time.Time{}): true,
}

// Clone returns a deep copy of v. Pointers, slices, and maps reachable
// more than once from v within the same call resolve to the same cloned
// value, preserving intra-graph sharing instead of duplicating it.
func Clone(v any) any {
	c := &cloner{seen: make(map[any]reflect.Value)}
	if v == nil {
		return nil
	}
	out := c.clone(reflect.ValueOf(v))
	return out.Interface()
}

// CloneMetadata deep-clones a File/Run metadata map so the Controller
// and Executor never share a mutable object graph.
func CloneMetadata(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	cloned := Clone(in)
	m, _ := cloned.(map[string]any)
	return m
}

type cloner struct {
	seen map[any]reflect.Value
}

func (c *cloner) clone(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return v

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		inner := c.clone(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(inner)
		return out

	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		key := v.Pointer()
		if existing, ok := c.seen[key]; ok {
			return existing
		}
		out := reflect.New(v.Type().Elem())
		c.seen[key] = out
		out.Elem().Set(c.clone(v.Elem()))
		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		key := v.Pointer()
		if existing, ok := c.seen[key]; ok {
			return existing
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		c.seen[key] = out
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.clone(v.Index(i)))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		key := v.Pointer()
		if existing, ok := c.seen[key]; ok {
			return existing
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		c.seen[key] = out
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(c.clone(iter.Key()), c.clone(iter.Value()))
		}
		return out

	case reflect.Struct:
		if opaqueValueTypes[v.Type()] {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)
			if !field.IsExported() {
				continue
			}
			if v.Field(i).Kind() == reflect.Func {
				// Function-valued properties are dropped during
				// degradation
				continue
			}
			out.Field(i).Set(c.clone(v.Field(i)))
		}
		return out

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// Not part of the clonable universe; zero value stands in.
		return reflect.Zero(v.Type())

	default:
		return v
	}
}
