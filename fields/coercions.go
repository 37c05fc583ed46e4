package fields

import (
	"time"

	"github.com/influx6/faunalink"
)

//==============================================================================

// AsValue accepts any variant and returns it untouched. Combined with Root
// it gives the identity extraction used as the base of Collect compositions.
var AsValue = Coercion[faunalink.Value]{
	Expect: "Value",
	Fn: func(v faunalink.Value) (faunalink.Value, bool) {
		return v, true
	},
}

// AsString accepts a StringV.
var AsString = Coercion[string]{
	Expect: "StringV",
	Fn: func(v faunalink.Value) (string, bool) {
		s, ok := v.(faunalink.StringV)
		return string(s), ok
	},
}

// AsLong accepts a LongV.
var AsLong = Coercion[int64]{
	Expect: "LongV",
	Fn: func(v faunalink.Value) (int64, bool) {
		n, ok := v.(faunalink.LongV)
		return int64(n), ok
	},
}

// AsDouble accepts a DoubleV.
var AsDouble = Coercion[float64]{
	Expect: "DoubleV",
	Fn: func(v faunalink.Value) (float64, bool) {
		f, ok := v.(faunalink.DoubleV)
		return float64(f), ok
	},
}

// AsBool accepts a BooleanV.
var AsBool = Coercion[bool]{
	Expect: "BooleanV",
	Fn: func(v faunalink.Value) (bool, bool) {
		b, ok := v.(faunalink.BooleanV)
		return bool(b), ok
	},
}

// AsTime accepts a TimeV, returning it in UTC.
var AsTime = Coercion[time.Time]{
	Expect: "TimeV",
	Fn: func(v faunalink.Value) (time.Time, bool) {
		t, ok := v.(faunalink.TimeV)
		return t.Time(), ok
	},
}

// AsDate accepts a DateV, returning it in UTC truncated to the day.
var AsDate = Coercion[time.Time]{
	Expect: "DateV",
	Fn: func(v faunalink.Value) (time.Time, bool) {
		d, ok := v.(faunalink.DateV)
		return d.Time(), ok
	},
}

// AsBytes accepts a BytesV.
var AsBytes = Coercion[[]byte]{
	Expect: "BytesV",
	Fn: func(v faunalink.Value) ([]byte, bool) {
		b, ok := v.(faunalink.BytesV)
		return []byte(b), ok
	},
}

// AsRef accepts a RefV.
var AsRef = Coercion[faunalink.RefV]{
	Expect: "RefV",
	Fn: func(v faunalink.Value) (faunalink.RefV, bool) {
		r, ok := v.(faunalink.RefV)
		return r, ok
	},
}

// AsSetRef accepts a SetRefV.
var AsSetRef = Coercion[faunalink.SetRefV]{
	Expect: "SetRefV",
	Fn: func(v faunalink.Value) (faunalink.SetRefV, bool) {
		s, ok := v.(faunalink.SetRefV)
		return s, ok
	},
}

// AsObject accepts an ObjectV.
var AsObject = Coercion[faunalink.ObjectV]{
	Expect: "ObjectV",
	Fn: func(v faunalink.Value) (faunalink.ObjectV, bool) {
		o, ok := v.(faunalink.ObjectV)
		return o, ok
	},
}

// AsArray accepts an ArrayV.
var AsArray = Coercion[[]faunalink.Value]{
	Expect: "ArrayV",
	Fn: func(v faunalink.Value) ([]faunalink.Value, bool) {
		a, ok := v.(faunalink.ArrayV)
		return []faunalink.Value(a), ok
	},
}
