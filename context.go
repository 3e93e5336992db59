package mustache

import (
	"fmt"
	"reflect"
)

// Kind is the discriminator a ContextValue reports about itself.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindEnum
	KindStruct
	KindSequence
	KindTuple
	KindOptional
	KindLambda
)

func (k Kind) String() string {
	names := [...]string{"nil", "bool", "integer", "float", "string", "enum", "struct", "sequence", "tuple", "optional", "lambda"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// LambdaContext is passed to a lambda invocation. It carries the raw
// tag-body bytes, the active escape flag, the active delimiters, and a
// capability to render an arbitrary byte string as a template at those
// delimiters against the renderer's current context stack.
type LambdaContext struct {
	Text       string
	Escaped    bool
	OpenDelim  string
	CloseDelim string
	Render     func(text string) (string, error)
}

// ContextValue is the narrow capability interface the renderer uses to
// walk arbitrary host data. A host implements this once per value
// system; the engine never type switches on concrete Go types outside
// of the reference adapter below.
type ContextValue interface {
	Kind() Kind

	// Struct-like access (KindStruct).
	Members() []string
	Field(name string) (ContextValue, bool)

	// Sequence/tuple access (KindSequence, KindTuple).
	Len() int
	Index(i int) (ContextValue, bool)

	// Optional access (KindOptional).
	Present() bool
	Unwrap() (ContextValue, bool)

	// Lambda invocation (KindLambda).
	Invoke(lc *LambdaContext) (string, error)

	// Primitive views.
	StringValue() string
	BoolValue() bool
	IntValue() int64
	FloatValue() float64
	EnumValue() string

	// Interface returns the underlying host value, used only for the
	// final text conversion of a resolved value: it is what a
	// ValueStringer receives, and what the fmt fallback formats for
	// kinds without a primitive view.
	Interface() interface{}
}

// isTruthy implements the section truthiness rule: false,
// nil/empty-optional, empty sequence/tuple, and empty string are falsy;
// everything else (including the integer or float zero value, unlike
// some Mustache ports) is truthy.
func isTruthy(v ContextValue) bool {
	switch v.Kind() {
	case KindNil:
		return false
	case KindOptional:
		if !v.Present() {
			return false
		}
		inner, ok := v.Unwrap()
		if !ok {
			return false
		}
		return isTruthy(inner)
	case KindBool:
		return v.BoolValue()
	case KindSequence, KindTuple:
		return v.Len() > 0
	case KindString:
		return v.StringValue() != ""
	default:
		return true
	}
}

// NewContextValue wraps an arbitrary Go value (map, struct, slice,
// array, pointer, primitive, or func) as a ContextValue using
// reflection: the reference adapter a host's native value system would
// otherwise have to supply.
func NewContextValue(x interface{}) ContextValue {
	return &reflectValue{v: reflect.ValueOf(x)}
}

type reflectValue struct {
	v reflect.Value
}

func (r *reflectValue) Kind() Kind {
	v := r.v
	if !v.IsValid() {
		return KindNil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return KindOptional
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if isStringer(v) {
			return KindEnum
		}
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		if isStringer(v) {
			return KindEnum
		}
		return KindString
	case reflect.Slice, reflect.Array:
		if isByteSlice(v) {
			return KindString
		}
		if v.Kind() == reflect.Array {
			return KindTuple
		}
		return KindSequence
	case reflect.Map, reflect.Struct:
		return KindStruct
	case reflect.Func:
		return KindLambda
	default:
		return KindNil
	}
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func isStringer(v reflect.Value) bool {
	if !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(fmt.Stringer)
	return ok
}

func (r *reflectValue) Members() []string {
	v := r.v
	switch v.Kind() {
	case reflect.Map:
		names := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			if k.Kind() == reflect.Interface {
				k = k.Elem()
			}
			if k.Kind() == reflect.String {
				names = append(names, k.String())
			}
		}
		return names
	case reflect.Struct:
		t := v.Type()
		names := make([]string, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); f.IsExported() {
				names = append(names, f.Name)
			}
		}
		return names
	default:
		return nil
	}
}

func (r *reflectValue) Field(name string) (ContextValue, bool) {
	v := r.v
	switch v.Kind() {
	case reflect.Map:
		item := v.MapIndex(reflect.ValueOf(name))
		if !item.IsValid() {
			return nil, false
		}
		return &reflectValue{v: item}, true
	case reflect.Struct:
		if f := v.FieldByName(name); f.IsValid() && f.CanInterface() {
			return &reflectValue{v: f}, true
		}
		if m := v.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
			out := m.Call(nil)
			return &reflectValue{v: out[0]}, true
		}
		// v arrived here already indirected through a real pointer (see
		// Unwrap), so it is addressable; Addr() recovers the pointer so a
		// pointer-receiver method stays reachable the way plain Go method
		// calls on an addressable value would find it.
		if v.CanAddr() {
			if m := v.Addr().MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
				out := m.Call(nil)
				return &reflectValue{v: out[0]}, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

func (r *reflectValue) Len() int {
	switch r.v.Kind() {
	case reflect.Slice, reflect.Array, reflect.String, reflect.Map:
		return r.v.Len()
	default:
		return 0
	}
}

func (r *reflectValue) Index(i int) (ContextValue, bool) {
	switch r.v.Kind() {
	case reflect.Slice, reflect.Array:
		if i < 0 || i >= r.v.Len() {
			return nil, false
		}
		return &reflectValue{v: r.v.Index(i)}, true
	default:
		return nil, false
	}
}

func (r *reflectValue) Present() bool {
	v := r.v
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return !v.IsNil()
	default:
		return true
	}
}

// Unwrap fully indirects through any chain of pointers/interfaces, so a
// caller need only unwrap once regardless of pointer depth.
func (r *reflectValue) Unwrap() (ContextValue, bool) {
	v := r.v
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Ptr, reflect.Interface:
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		default:
			return &reflectValue{v: v}, true
		}
	}
	return nil, false
}

func (r *reflectValue) StringValue() string {
	v := r.v
	if isByteSlice(v) {
		return string(v.Bytes())
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return ""
}

func (r *reflectValue) BoolValue() bool {
	if r.v.Kind() == reflect.Bool {
		return r.v.Bool()
	}
	return false
}

func (r *reflectValue) IntValue() int64 {
	switch r.v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return r.v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(r.v.Uint())
	default:
		return 0
	}
}

func (r *reflectValue) FloatValue() float64 {
	if r.v.Kind() == reflect.Float32 || r.v.Kind() == reflect.Float64 {
		return r.v.Float()
	}
	return 0
}

func (r *reflectValue) EnumValue() string {
	if r.v.CanInterface() {
		if s, ok := r.v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	return ""
}

func (r *reflectValue) Interface() interface{} {
	if !r.v.IsValid() || !r.v.CanInterface() {
		return nil
	}
	return r.v.Interface()
}

// RenderFn is the signature a lambda's render callback is invoked with:
// it re-parses text as a Mustache template at the lambda's active
// delimiters and renders it against the current context stack.
type RenderFn func(text string) (string, error)

// Invoke calls a Go func value as a lambda. Five signatures are
// supported:
//
//	func() string
//	func() (string, error)
//	func(string) string
//	func(string) (string, error)
//	func(string, RenderFn) (string, error)
func (r *reflectValue) Invoke(lc *LambdaContext) (string, error) {
	v := r.v
	if v.Kind() != reflect.Func {
		return "", fmt.Errorf("mustache: Invoke called on non-func value")
	}
	t := v.Type()

	call := func(args []reflect.Value) (string, error) {
		out := v.Call(args)
		var text string
		var err error
		switch len(out) {
		case 1:
			text, _ = out[0].Interface().(string)
		case 2:
			text, _ = out[0].Interface().(string)
			if e, ok := out[1].Interface().(error); ok {
				err = e
			}
		}
		return text, err
	}

	switch {
	case t.NumIn() == 0:
		return call(nil)
	case t.NumIn() == 1 && t.In(0).Kind() == reflect.String:
		return call([]reflect.Value{reflect.ValueOf(lc.Text)})
	case t.NumIn() == 2 && t.In(0).Kind() == reflect.String && t.In(1).Kind() == reflect.Func:
		render := RenderFn(lc.Render)
		return call([]reflect.Value{reflect.ValueOf(lc.Text), reflect.ValueOf(render)})
	default:
		return "", fmt.Errorf("mustache: unsupported lambda signature %s", t)
	}
}
