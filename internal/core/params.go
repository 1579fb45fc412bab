// Package core implements statement assembly for quill: the parameter
// encoder, the clause builder, the condition compiler and the one-shot
// statement factories.
package core

import (
	"encoding"
	"encoding/json"
	"math"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the inspected runtime kind of a parameter value. Inspection runs on
// the original value, before conversion, so a flag stays a flag even though
// its wire value is a plain number.
type Kind int

// Supported value kinds, in the order Encode checks them.
const (
	KindOther Kind = iota
	KindTimestamp
	KindFlag
	KindMarshaled
	KindStructured
	KindNull
	KindInteger
	KindFloat
	KindInt64
	KindText
	KindArray
)

var kindNames = [...]string{
	KindOther:      "other",
	KindTimestamp:  "timestamp",
	KindFlag:       "flag",
	KindMarshaled:  "marshaled",
	KindStructured: "structured",
	KindNull:       "null",
	KindInteger:    "integer",
	KindFloat:      "float",
	KindInt64:      "int64",
	KindText:       "text",
	KindArray:      "array",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Tag is the column type carried by a typed placeholder. The set is closed:
// adding a tag changes the wire format.
type Tag string

// Placeholder type tags.
const (
	TagInt32    Tag = "Int32"
	TagFloat64  Tag = "Float64"
	TagInt64    Tag = "Int64"
	TagString   Tag = "String"
	TagUInt8    Tag = "UInt8"
	TagDateTime Tag = "DateTime"
	TagNullable Tag = "Nullable(String)"
	TagArray    Tag = "Array(String)"
)

// Tag returns the placeholder tag for values of kind k.
func (k Kind) Tag() Tag {
	switch k {
	case KindTimestamp:
		return TagDateTime
	case KindFlag:
		return TagUInt8
	case KindNull:
		return TagNullable
	case KindInteger:
		return TagInt32
	case KindFloat:
		return TagFloat64
	case KindInt64:
		return TagInt64
	case KindArray:
		return TagArray
	default:
		return TagString
	}
}

// Encoded is a parameter ready for the transport.
type Encoded struct {
	// Value is the wire value appended to the parameter list.
	Value interface{}
	// Kind is the inspected kind of the original value.
	Kind Kind
	// Tag is the placeholder type tag derived from Kind.
	Tag Tag
}

// Encode inspects v and converts it to its wire form.
//
//	Encode(true)                 // {1, flag, UInt8}
//	Encode(3)                    // {3, integer, Int32}
//	Encode(3.14)                 // {3.14, float, Float64}
//	Encode(nil)                  // {nil, null, Nullable(String)}
//	Encode(time.UnixMilli(1500)) // {1, timestamp, DateTime}
func Encode(v interface{}) (Encoded, error) {
	kind := inspect(v)
	wire, err := convert(v, kind)
	if err != nil {
		return Encoded{}, err
	}
	return Encoded{Value: wire, Kind: kind, Tag: kind.Tag()}, nil
}

// deref follows non-nil pointers. A nil pointer is returned as is.
func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

var (
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
)

// implementer returns the first of v, the values behind its pointers, or a
// pointer to a copy of the innermost value that implements iface. Methods
// declared on pointer receivers are found either way.
func implementer(v interface{}, iface reflect.Type) (interface{}, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() {
		if rv.Type().Implements(iface) {
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil, false
			}
			return rv.Interface(), true
		}
		if rv.Kind() != reflect.Pointer {
			ptr := reflect.New(rv.Type())
			ptr.Elem().Set(rv)
			if ptr.Type().Implements(iface) {
				return ptr.Interface(), true
			}
			return nil, false
		}
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return nil, false
}

func inspect(v interface{}) Kind {
	d := deref(v)

	switch d.(type) {
	case nil:
		return KindNull
	case time.Time, primitive.DateTime:
		return KindTimestamp
	case bool:
		return KindFlag
	}
	if _, ok := implementer(v, textMarshalerType); ok {
		return KindMarshaled
	}
	if _, ok := implementer(v, jsonMarshalerType); ok {
		return KindStructured
	}

	rv := reflect.ValueOf(d)
	switch rv.Kind() {
	case reflect.Bool:
		return KindFlag
	case reflect.Map:
		if rv.IsNil() {
			return KindNull
		}
		if rv.Type().Key().Kind() == reflect.String {
			return KindStructured
		}
		return KindOther
	case reflect.Struct:
		return KindStructured
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return KindNull
		}
		return KindOther
	case reflect.Slice:
		if rv.IsNil() {
			return KindNull
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindOther
		}
		return KindArray
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindOther
		}
		return KindArray
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return KindInteger
	case reflect.Int:
		if n := rv.Int(); n >= math.MinInt32 && n <= math.MaxInt32 {
			return KindInteger
		}
		return KindInt64
	case reflect.Int64, reflect.Uint32, reflect.Uint, reflect.Uint64:
		return KindInt64
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindText
	}
	return KindOther
}

func convert(v interface{}, kind Kind) (interface{}, error) {
	d := deref(v)

	switch kind {
	case KindNull:
		return nil, nil

	case KindTimestamp:
		var t time.Time
		switch x := d.(type) {
		case time.Time:
			t = x
		case primitive.DateTime:
			t = x.Time()
		}
		return epochSeconds(t), nil

	case KindFlag:
		if reflect.ValueOf(d).Bool() {
			return uint8(1), nil
		}
		return uint8(0), nil

	case KindMarshaled:
		m, _ := implementer(v, textMarshalerType)
		text, err := m.(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, reject(reflect.TypeOf(v).String(), "cannot marshal value as text: "+err.Error())
		}
		return string(text), nil

	case KindStructured:
		target := d
		if m, ok := implementer(v, jsonMarshalerType); ok {
			target = m
		}
		data, err := json.Marshal(target)
		if err != nil {
			return nil, reject(reflect.TypeOf(v).String(), "cannot serialize value as JSON: "+err.Error())
		}
		return string(data), nil
	}

	return d, nil
}

// epochSeconds returns floor(epoch milliseconds / 1000).
func epochSeconds(t time.Time) int64 {
	ms := t.UnixMilli()
	s := ms / 1000
	if ms%1000 < 0 {
		s--
	}
	return s
}
