package faunalink_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/kit/tests"
	"github.com/influx6/faunalink"
)

//==============================================================================

// TestEncodeScalars validates the wire forms of the scalar expressions.
func TestEncodeScalars(t *testing.T) {
	t.Logf("Given the need to encode scalar expressions")
	{
		t.Logf("\tWhen giving the scalar builders")
		{
			cases := []struct {
				expr faunalink.Expr
				want string
			}{
				{faunalink.Null(), "null"},
				{faunalink.Bool(true), "true"},
				{faunalink.Str("alex"), `"alex"`},
				{faunalink.Long(9223372036854775807), "9223372036854775807"},
				{faunalink.Double(5.5), "5.5"},
				{faunalink.Double(5), `{"@double":"5"}`},
			}

			for _, c := range cases {
				data, err := faunalink.Encode(c.expr)
				if err != nil {
					t.Fatalf("\t%s\tShould have encoded %#v: %q", tests.Failed, c.expr, err)
				}

				if string(data) != c.want {
					t.Fatalf("\t%s\tShould have encoded %#v as %s, got %s", tests.Failed, c.expr, c.want, data)
				}
			}
			t.Logf("\t%s\tShould have encoded every scalar to its wire form", tests.Success)
		}
	}
}

// TestEncodeObjectEscaping validates that objects carrying reserved wrapper
// keys are sent through the escaped form.
func TestEncodeObjectEscaping(t *testing.T) {
	t.Logf("Given the need to encode objects with colliding keys")
	{
		t.Logf("\tWhen giving an object with a plain key")
		{
			data, err := faunalink.Encode(faunalink.Obj(
				faunalink.KV("name", faunalink.Str("alex")),
				faunalink.KV("age", faunalink.Long(30)),
			))

			if err != nil {
				t.Fatalf("\t%s\tShould have encoded the object: %q", tests.Failed, err)
			}

			if string(data) != `{"name":"alex","age":30}` {
				t.Fatalf("\t%s\tShould have kept builder key order without escaping: %s", tests.Failed, data)
			}
			t.Logf("\t%s\tShould have kept builder key order without escaping", tests.Success)
		}

		t.Logf("\tWhen giving an object with a reserved key")
		{
			data, err := faunalink.Encode(faunalink.Obj(
				faunalink.KV("@ref", faunalink.Str("x")),
			))

			if err != nil {
				t.Fatalf("\t%s\tShould have encoded the object: %q", tests.Failed, err)
			}

			if string(data) != `{"object":{"@ref":"x"}}` {
				t.Fatalf("\t%s\tShould have escaped through the object form: %s", tests.Failed, data)
			}
			t.Logf("\t%s\tShould have escaped through the object form", tests.Success)
		}
	}
}

// TestDecodeWrappedForms validates the decode of every documented wrapper.
func TestDecodeWrappedForms(t *testing.T) {
	t.Logf("Given the need to decode the wrapped wire forms")
	{
		t.Logf("\tWhen giving a reference form")
		{
			val, err := faunalink.Decode([]byte(`{"@ref":{"id":"42","collection":{"@ref":{"id":"users"}}}}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the reference: %q", tests.Failed, err)
			}

			ref, ok := val.(faunalink.RefV)
			if !ok {
				t.Fatalf("\t%s\tShould have decoded into a RefV: %s", tests.Failed, faunalink.Tag(val))
			}

			if ref.ID != "42" || ref.Collection == nil || ref.Collection.ID != "users" {
				t.Fatalf("\t%s\tShould have kept the id and collection chain: %+v", tests.Failed, ref)
			}
			t.Logf("\t%s\tShould have kept the id and collection chain", tests.Success)
		}

		t.Logf("\tWhen giving timestamp, date, bytes and double forms")
		{
			val, err := faunalink.Decode([]byte(`{"@ts":"1970-01-01T00:00:00.000000005Z"}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the timestamp: %q", tests.Failed, err)
			}

			ts, ok := val.(faunalink.TimeV)
			if !ok || ts.Time().Nanosecond() != 5 {
				t.Fatalf("\t%s\tShould have kept sub-second precision: %#v", tests.Failed, val)
			}
			t.Logf("\t%s\tShould have kept sub-second precision", tests.Success)

			val, err = faunalink.Decode([]byte(`{"@date":"1984-09-08"}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the date: %q", tests.Failed, err)
			}

			day, ok := val.(faunalink.DateV)
			if !ok || day.Time().Year() != 1984 || day.Time().Month() != time.September {
				t.Fatalf("\t%s\tShould have decoded the calendar date: %#v", tests.Failed, val)
			}
			t.Logf("\t%s\tShould have decoded the calendar date", tests.Success)

			val, err = faunalink.Decode([]byte(`{"@bytes":"AQID"}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the bytes form: %q", tests.Failed, err)
			}

			raw, ok := val.(faunalink.BytesV)
			if !ok || len(raw) != 3 || raw[0] != 1 {
				t.Fatalf("\t%s\tShould have base64 decoded the payload: %#v", tests.Failed, val)
			}
			t.Logf("\t%s\tShould have base64 decoded the payload", tests.Success)

			val, err = faunalink.Decode([]byte(`{"@double":"2.5"}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the double form: %q", tests.Failed, err)
			}

			if !faunalink.Same(val, faunalink.DoubleV(2.5)) {
				t.Fatalf("\t%s\tShould have produced a DoubleV: %#v", tests.Failed, val)
			}
			t.Logf("\t%s\tShould have produced a DoubleV", tests.Success)
		}

		t.Logf("\tWhen giving both object forms")
		{
			plain, err := faunalink.Decode([]byte(`{"name":"alex"}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the plain form: %q", tests.Failed, err)
			}

			escaped, err := faunalink.Decode([]byte(`{"object":{"name":"alex"}}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the escaped form: %q", tests.Failed, err)
			}

			if !faunalink.Same(plain, escaped) {
				t.Fatalf("\t%s\tShould have decoded both forms into the same object", tests.Failed)
			}
			t.Logf("\t%s\tShould have decoded both forms into the same object", tests.Success)
		}
	}
}

// TestEscapedObjectDecode validates that the escaped form keeps its
// immediate keys literal while everything below still unwraps.
func TestEscapedObjectDecode(t *testing.T) {
	t.Logf("Given the need to decode escaped objects with colliding keys")
	{
		t.Logf("\tWhen giving an escaped object keyed by a wrapper name")
		{
			val, err := faunalink.Decode([]byte(`{"object":{"@set":"collides"}}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the escaped form: %q", tests.Failed, err)
			}

			obj, ok := val.(faunalink.ObjectV)
			if !ok {
				t.Fatalf("\t%s\tShould have produced a plain object: %s", tests.Failed, faunalink.Tag(val))
			}

			got, ok := obj.Get("@set")
			if !ok || !faunalink.Same(got, faunalink.StringV("collides")) {
				t.Fatalf("\t%s\tShould have kept the colliding key literal: %#v", tests.Failed, obj)
			}
			t.Logf("\t%s\tShould have kept the colliding key literal", tests.Success)
		}

		t.Logf("\tWhen giving an object keyed by object itself")
		{
			src := faunalink.NewObjectV([]string{"object"}, map[string]faunalink.Value{
				"object": faunalink.NewObjectV([]string{"a"}, map[string]faunalink.Value{
					"a": faunalink.LongV(1),
				}),
			})

			data, err := faunalink.Encode(src)
			if err != nil {
				t.Fatalf("\t%s\tShould have encoded the object: %q", tests.Failed, err)
			}

			back, err := faunalink.Decode(data)
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded %s: %q", tests.Failed, data, err)
			}

			if !faunalink.Same(src, back) {
				t.Fatalf("\t%s\tShould have kept the nesting level through the round trip: %#v", tests.Failed, back)
			}
			t.Logf("\t%s\tShould have kept the nesting level through the round trip", tests.Success)
		}

		t.Logf("\tWhen giving wrappers below the escape")
		{
			val, err := faunalink.Decode([]byte(`{"object":{"@set":"x","ref":{"@ref":{"id":"1"}}}}`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the escaped form: %q", tests.Failed, err)
			}

			obj := val.(faunalink.ObjectV)

			ref, ok := obj.Get("ref")
			if !ok {
				t.Fatalf("\t%s\tShould have kept the ref member: %#v", tests.Failed, obj)
			}

			if _, ok := ref.(faunalink.RefV); !ok {
				t.Fatalf("\t%s\tShould have unwrapped the nested reference below the escape: %s", tests.Failed, faunalink.Tag(ref))
			}
			t.Logf("\t%s\tShould have unwrapped the nested reference below the escape", tests.Success)
		}
	}
}

// TestNumberVariantSplit validates that integer and fractional syntax land
// on different variants.
func TestNumberVariantSplit(t *testing.T) {
	t.Logf("Given the need to keep longs and doubles apart")
	{
		t.Logf("\tWhen giving integer and fractional number syntax")
		{
			val, err := faunalink.Decode([]byte(`[3, 3.0, 3e2]`))
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the array: %q", tests.Failed, err)
			}

			arr := val.(faunalink.ArrayV)

			if _, ok := arr[0].(faunalink.LongV); !ok {
				t.Fatalf("\t%s\tShould have decoded integer syntax into LongV: %s", tests.Failed, faunalink.Tag(arr[0]))
			}
			t.Logf("\t%s\tShould have decoded integer syntax into LongV", tests.Success)

			if _, ok := arr[1].(faunalink.DoubleV); !ok {
				t.Fatalf("\t%s\tShould have decoded fractional syntax into DoubleV: %s", tests.Failed, faunalink.Tag(arr[1]))
			}

			if _, ok := arr[2].(faunalink.DoubleV); !ok {
				t.Fatalf("\t%s\tShould have decoded exponent syntax into DoubleV: %s", tests.Failed, faunalink.Tag(arr[2]))
			}
			t.Logf("\t%s\tShould have decoded fractional and exponent syntax into DoubleV", tests.Success)
		}
	}
}

// TestRoundTrip validates that decode(encode(v)) reproduces the value for
// every variant of the model.
func TestRoundTrip(t *testing.T) {
	t.Logf("Given the need to round trip every value variant")
	{
		t.Logf("\tWhen giving one value of each variant")
		{
			users := faunalink.RefV{ID: "users"}

			values := []faunalink.Value{
				faunalink.NullV{},
				faunalink.BooleanV(true),
				faunalink.StringV("alex"),
				faunalink.LongV(-42),
				faunalink.DoubleV(2.5),
				faunalink.DoubleV(4),
				faunalink.ArrayV{faunalink.LongV(1), faunalink.StringV("two")},
				faunalink.NewObjectV([]string{"@set", "b"}, map[string]faunalink.Value{
					"@set": faunalink.StringV("collides"),
					"b":    faunalink.NullV{},
				}),
				faunalink.RefV{ID: "42", Collection: &users},
				faunalink.SetRefV{Parameters: faunalink.NewObjectV([]string{"match"}, map[string]faunalink.Value{
					"match": faunalink.StringV("all_users"),
				})},
				faunalink.TimeV(time.Date(2016, 5, 3, 10, 20, 30, 40, time.UTC)),
				faunalink.DateV(time.Date(2016, 5, 3, 0, 0, 0, 0, time.UTC)),
				faunalink.BytesV{1, 2, 3},
			}

			for _, v := range values {
				data, err := faunalink.Encode(v)
				if err != nil {
					t.Fatalf("\t%s\tShould have encoded %s: %q", tests.Failed, faunalink.Tag(v), err)
				}

				back, err := faunalink.Decode(data)
				if err != nil {
					t.Fatalf("\t%s\tShould have decoded %s back from %s: %q", tests.Failed, faunalink.Tag(v), data, err)
				}

				if !faunalink.Same(v, back) {
					t.Fatalf("\t%s\tShould have round tripped %s through %s, got %#v", tests.Failed, faunalink.Tag(v), data, back)
				}
			}
			t.Logf("\t%s\tShould have round tripped every variant unchanged", tests.Success)
		}
	}
}

// TestDecodeFailures validates the parse and structural failure modes.
func TestDecodeFailures(t *testing.T) {
	t.Logf("Given the need to reject malformed wire text")
	{
		t.Logf("\tWhen giving broken JSON syntax")
		{
			_, err := faunalink.Decode([]byte(`{"a":`))
			if err == nil {
				t.Fatalf("\t%s\tShould have failed on truncated input", tests.Failed)
			}

			if _, ok := err.(faunalink.ParseError); !ok {
				t.Fatalf("\t%s\tShould have produced a ParseError: %T", tests.Failed, err)
			}
			t.Logf("\t%s\tShould have produced a ParseError", tests.Success)
		}

		t.Logf("\tWhen giving wrappers with broken inner shapes")
		{
			cases := []string{
				`{"@ref":{"collection":{"@ref":{"id":"users"}}}}`,
				`{"@ref":"plain"}`,
				`{"@ts":12}`,
				`{"@date":"not-a-date"}`,
				`{"@bytes":"???"}`,
				`{"@double":"abc"}`,
				`{"@set":"plain"}`,
				`{"@unheard-of":{}}`,
			}

			for _, c := range cases {
				_, err := faunalink.Decode([]byte(c))
				if err == nil {
					t.Fatalf("\t%s\tShould have failed decoding %s", tests.Failed, c)
				}

				if _, ok := err.(faunalink.StructuralError); !ok {
					t.Fatalf("\t%s\tShould have produced a StructuralError for %s: %T", tests.Failed, c, err)
				}
			}
			t.Logf("\t%s\tShould have produced a StructuralError for every broken wrapper", tests.Success)
		}

		t.Logf("\tWhen giving a nested broken wrapper")
		{
			_, err := faunalink.Decode([]byte(`{"data":[{"@ts":12}]}`))

			serr, ok := err.(faunalink.StructuralError)
			if !ok {
				t.Fatalf("\t%s\tShould have produced a StructuralError: %v", tests.Failed, err)
			}

			if !strings.Contains(serr.Error(), "data") {
				t.Fatalf("\t%s\tShould have named the offending path: %q", tests.Failed, serr.Error())
			}
			t.Logf("\t%s\tShould have named the offending path", tests.Success)
		}
	}
}

// TestDecodeIdempotence validates that decoding the same body twice yields
// equal trees.
func TestDecodeIdempotence(t *testing.T) {
	t.Logf("Given the need to decode a body more than once")
	{
		t.Logf("\tWhen giving the same response body twice")
		{
			body := []byte(`{"resource":{"ref":{"@ref":{"id":"1"}},"ts":{"@ts":"2016-05-03T10:20:30Z"}}}`)

			first, err := faunalink.Decode(body)
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the body: %q", tests.Failed, err)
			}

			second, err := faunalink.Decode(body)
			if err != nil {
				t.Fatalf("\t%s\tShould have decoded the body again: %q", tests.Failed, err)
			}

			if !faunalink.Same(first, second) {
				t.Fatalf("\t%s\tShould have produced equal trees on both decodes", tests.Failed)
			}
			t.Logf("\t%s\tShould have produced equal trees on both decodes", tests.Success)
		}
	}
}
