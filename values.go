package faunalink

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

//==============================================================================

// Value defines the closed set of data types returned from a faunalink
// endpoint. Every node of a decoded response tree is one of the variants
// declared in this file and nothing else; the codec rejects anything it does
// not recognize instead of letting it leak through.
type Value interface {
	Expr
	valueNode()
}

//==============================================================================

// NullV represents the null value.
type NullV struct{}

// BooleanV represents a boolean value.
type BooleanV bool

// StringV represents a string value.
type StringV string

// LongV represents a 64-bit integer value.
type LongV int64

// DoubleV represents a double precision float value.
type DoubleV float64

// ObjectV represents a mapping of unique string keys to values. Keys holds
// the key order as it appeared on the wire or in the builder, so encoding an
// object is stable across runs.
type ObjectV struct {
	Keys   []string
	Fields map[string]Value
}

// ArrayV represents an ordered sequence of values.
type ArrayV []Value

// RefV represents a reference to a stored document. ID is kept as a string
// on the wire so 64-bit identifiers never pass through a JSON number.
type RefV struct {
	ID         string
	Collection *RefV
	Database   *RefV
}

// SetRefV represents an opaque set specification returned by the endpoint.
type SetRefV struct {
	Parameters ObjectV
}

// TimeV represents a timestamp with sub-second precision.
type TimeV time.Time

// DateV represents a calendar date.
type DateV time.Time

// BytesV represents a binary blob.
type BytesV []byte

func (NullV) valueNode()    {}
func (BooleanV) valueNode() {}
func (StringV) valueNode()  {}
func (LongV) valueNode()    {}
func (DoubleV) valueNode()  {}
func (ObjectV) valueNode()  {}
func (ArrayV) valueNode()   {}
func (RefV) valueNode()     {}
func (SetRefV) valueNode()  {}
func (TimeV) valueNode()    {}
func (DateV) valueNode()    {}
func (BytesV) valueNode()   {}

// Values double as expressions so a reference or timestamp pulled out of one
// response can be embedded directly into the next query.
func (NullV) exprNode()    {}
func (BooleanV) exprNode() {}
func (StringV) exprNode()  {}
func (LongV) exprNode()    {}
func (DoubleV) exprNode()  {}
func (ObjectV) exprNode()  {}
func (ArrayV) exprNode()   {}
func (RefV) exprNode()     {}
func (SetRefV) exprNode()  {}
func (TimeV) exprNode()    {}
func (DateV) exprNode()    {}
func (BytesV) exprNode()   {}

//==============================================================================

// NewObjectV returns an ObjectV from the giving fields, ordering its keys by
// the order in which they are supplied.
func NewObjectV(keys []string, fields map[string]Value) ObjectV {
	return ObjectV{Keys: keys, Fields: fields}
}

// Get returns the value stored under the giving key and whether the key
// exists in the object.
func (o ObjectV) Get(key string) (Value, bool) {
	v, ok := o.Fields[key]
	return v, ok
}

// Time returns the timestamp as a stdlib time.Time in UTC.
func (t TimeV) Time() time.Time {
	return time.Time(t).UTC()
}

// Time returns the date as a stdlib time.Time in UTC, truncated to the day.
func (d DateV) Time() time.Time {
	return time.Time(d).UTC()
}

// Tag returns the variant name for a value, used for diagnostics and the
// mismatch reports of the fields package.
func Tag(v Value) string {
	switch v.(type) {
	case NullV:
		return "NullV"
	case BooleanV:
		return "BooleanV"
	case StringV:
		return "StringV"
	case LongV:
		return "LongV"
	case DoubleV:
		return "DoubleV"
	case ObjectV:
		return "ObjectV"
	case ArrayV:
		return "ArrayV"
	case RefV:
		return "RefV"
	case SetRefV:
		return "SetRefV"
	case TimeV:
		return "TimeV"
	case DateV:
		return "DateV"
	case BytesV:
		return "BytesV"
	default:
		return fmt.Sprintf("%T", v)
	}
}

//==============================================================================

// Same reports whether two values are structurally equal. Object key order
// does not affect equality, only the key/value pairs themselves do.
func Same(a, b Value) bool {
	switch av := a.(type) {
	case NullV:
		_, ok := b.(NullV)
		return ok
	case BooleanV:
		bv, ok := b.(BooleanV)
		return ok && av == bv
	case StringV:
		bv, ok := b.(StringV)
		return ok && av == bv
	case LongV:
		bv, ok := b.(LongV)
		return ok && av == bv
	case DoubleV:
		bv, ok := b.(DoubleV)
		return ok && av == bv
	case ObjectV:
		bv, ok := b.(ObjectV)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}

		for key, ak := range av.Fields {
			bk, ok := bv.Fields[key]
			if !ok || !Same(ak, bk) {
				return false
			}
		}

		return true
	case ArrayV:
		bv, ok := b.(ArrayV)
		if !ok || len(av) != len(bv) {
			return false
		}

		for ind, item := range av {
			if !Same(item, bv[ind]) {
				return false
			}
		}

		return true
	case RefV:
		bv, ok := b.(RefV)
		return ok && sameRef(&av, &bv)
	case SetRefV:
		bv, ok := b.(SetRefV)
		return ok && Same(av.Parameters, bv.Parameters)
	case TimeV:
		bv, ok := b.(TimeV)
		return ok && time.Time(av).Equal(time.Time(bv))
	case DateV:
		bv, ok := b.(DateV)
		return ok && time.Time(av).Equal(time.Time(bv))
	case BytesV:
		bv, ok := b.(BytesV)
		return ok && bytes.Equal(av, bv)
	default:
		return false
	}
}

// sameRef compares two reference chains, walking their collection and
// database scopes.
func sameRef(a, b *RefV) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.ID != b.ID {
		return false
	}

	return sameRef(a.Collection, b.Collection) && sameRef(a.Database, b.Database)
}

//==============================================================================

// String returns a readable rendering of a reference chain.
func (r RefV) String() string {
	var parts []string

	cursor := &r
	for cursor != nil {
		parts = append(parts, cursor.ID)
		if cursor.Collection != nil {
			cursor = cursor.Collection
			continue
		}
		cursor = cursor.Database
	}

	return "ref(" + strings.Join(parts, "/") + ")"
}
