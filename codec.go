package faunalink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

//==============================================================================

// dateLayout defines the wire layout for calendar dates.
const dateLayout = "2006-01-02"

// wrapperKeys defines the reserved keys used by the wire encoding. An object
// whose own keys collide with any of these must be sent through the escaped
// {"object": {...}} form, else its decode would unwrap it into something it
// never was.
var wrapperKeys = map[string]bool{
	"@ref":    true,
	"@obj":    true,
	"@set":    true,
	"@ts":     true,
	"@date":   true,
	"@bytes":  true,
	"@double": true,
	"object":  true,
}

//==============================================================================

// ParseError is returned when the incoming text is not valid JSON. It keeps
// the original text and the offset of the syntax problem where the stdlib
// decoder reports one.
type ParseError struct {
	Text   string
	Offset int64
	Reason string
}

// Error returns the reason and offset for this parse failure.
func (p ParseError) Error() string {
	return fmt.Sprintf("faunalink: parse error at offset %d: %s", p.Offset, p.Reason)
}

// StructuralError is returned when a recognized wrapper key carries an inner
// shape the codec does not accept. Path names the location of the offending
// wrapper within the decoded tree.
type StructuralError struct {
	Key    string
	Path   []interface{}
	Reason string
}

// Error returns the wrapper key, location and reason for this failure.
func (s StructuralError) Error() string {
	var parts []string
	for _, p := range s.Path {
		parts = append(parts, fmt.Sprintf("%v", p))
	}

	return fmt.Sprintf("faunalink: bad %q form at [%s]: %s", s.Key, strings.Join(parts, " "), s.Reason)
}

//==============================================================================

// ErrNilExpr is returned when a nil expression reaches the encoder.
var ErrNilExpr = errors.New("faunalink: nil expression")

// Encode serializes the giving expression into its wire JSON form. Object
// keys are written in their builder or decode order, so encoding the same
// tree twice yields the same bytes.
func Encode(expr Expr) ([]byte, error) {
	var buf bytes.Buffer

	if err := encodeNode(&buf, expr); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// encodeNode writes one expression node into the buffer.
func encodeNode(buf *bytes.Buffer, expr Expr) error {
	switch ev := expr.(type) {
	case nil:
		return ErrNilExpr

	case NullE:
		buf.WriteString("null")
	case NullV:
		buf.WriteString("null")

	case BooleanE:
		buf.WriteString(strconv.FormatBool(bool(ev)))
	case BooleanV:
		buf.WriteString(strconv.FormatBool(bool(ev)))

	case StringE:
		return encodeString(buf, string(ev))
	case StringV:
		return encodeString(buf, string(ev))

	case LongE:
		buf.WriteString(strconv.FormatInt(int64(ev), 10))
	case LongV:
		buf.WriteString(strconv.FormatInt(int64(ev), 10))

	case DoubleE:
		encodeDouble(buf, float64(ev))
	case DoubleV:
		encodeDouble(buf, float64(ev))

	case ArrayE:
		return encodeArray(buf, ev)
	case ArrayV:
		items := make(ArrayE, len(ev))
		for ind, item := range ev {
			items[ind] = item
		}
		return encodeArray(buf, items)

	case ExprsE:
		return encodeArray(buf, ArrayE(ev))

	case ObjectE:
		return encodeObject(buf, ev)
	case ObjectV:
		pairs := make(ObjectE, 0, len(ev.Fields))
		for _, key := range orderedKeys(ev) {
			pairs = append(pairs, Pair{Key: key, Expr: ev.Fields[key]})
		}
		return encodeObject(buf, pairs)

	case RefV:
		return encodeRef(buf, ev)

	case SetRefV:
		buf.WriteString(`{"@set":`)
		if err := encodeNode(buf, ev.Parameters); err != nil {
			return err
		}
		buf.WriteByte('}')

	case TimeV:
		buf.WriteString(`{"@ts":`)
		if err := encodeString(buf, time.Time(ev).UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
		buf.WriteByte('}')

	case DateV:
		buf.WriteString(`{"@date":`)
		if err := encodeString(buf, time.Time(ev).UTC().Format(dateLayout)); err != nil {
			return err
		}
		buf.WriteByte('}')

	case BytesV:
		buf.WriteString(`{"@bytes":`)
		if err := encodeString(buf, base64.StdEncoding.EncodeToString(ev)); err != nil {
			return err
		}
		buf.WriteByte('}')

	default:
		return fmt.Errorf("faunalink: unencodable expression type %T", expr)
	}

	return nil
}

// encodeString writes a JSON string using the stdlib escaping rules.
func encodeString(buf *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	buf.Write(data)
	return nil
}

// encodeDouble writes a double either as a native JSON number or, when its
// shortest rendering would read back as an integer or is not valid JSON
// (NaN, infinities), through the wrapped {"@double": "..."} form so the
// variant survives the round trip.
func encodeDouble(buf *bytes.Buffer, f float64) {
	text := strconv.FormatFloat(f, 'g', -1, 64)

	if strings.ContainsAny(text, ".eE") && !strings.ContainsAny(text, "NI") {
		buf.WriteString(text)
		return
	}

	buf.WriteString(`{"@double":"`)
	buf.WriteString(text)
	buf.WriteString(`"}`)
}

// encodeArray writes the items as a JSON array.
func encodeArray(buf *bytes.Buffer, items ArrayE) error {
	buf.WriteByte('[')

	for ind, item := range items {
		if ind > 0 {
			buf.WriteByte(',')
		}

		if err := encodeNode(buf, item); err != nil {
			return err
		}
	}

	buf.WriteByte(']')
	return nil
}

// encodeObject writes the pairs as a JSON object, escaping through the
// {"object": {...}} form whenever a key collides with a wrapper key.
func encodeObject(buf *bytes.Buffer, pairs ObjectE) error {
	var escape bool
	for _, p := range pairs {
		if wrapperKeys[p.Key] {
			escape = true
			break
		}
	}

	if escape {
		buf.WriteString(`{"object":`)
	}

	buf.WriteByte('{')

	for ind, p := range pairs {
		if ind > 0 {
			buf.WriteByte(',')
		}

		if err := encodeString(buf, p.Key); err != nil {
			return err
		}

		buf.WriteByte(':')

		if err := encodeNode(buf, p.Expr); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	if escape {
		buf.WriteByte('}')
	}

	return nil
}

// encodeRef writes a reference through its wrapped {"@ref": {...}} form.
func encodeRef(buf *bytes.Buffer, ref RefV) error {
	buf.WriteString(`{"@ref":{"id":`)

	if err := encodeString(buf, ref.ID); err != nil {
		return err
	}

	if ref.Collection != nil {
		buf.WriteString(`,"collection":`)
		if err := encodeRef(buf, *ref.Collection); err != nil {
			return err
		}
	}

	if ref.Database != nil {
		buf.WriteString(`,"database":`)
		if err := encodeRef(buf, *ref.Database); err != nil {
			return err
		}
	}

	buf.WriteString("}}")
	return nil
}

// orderedKeys returns the object keys in their recorded order, appending any
// field missing from the order list so hand-built objects still encode every
// entry.
func orderedKeys(o ObjectV) []string {
	seen := make(map[string]bool, len(o.Fields))
	keys := make([]string, 0, len(o.Fields))

	for _, key := range o.Keys {
		if _, ok := o.Fields[key]; ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	var rest []string
	for key := range o.Fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}

	if len(rest) > 1 {
		sort.Strings(rest)
	}

	return append(keys, rest...)
}

//==============================================================================

// Decode parses the giving wire JSON into a Value tree, unwrapping every
// recognized wrapper form along the way. Malformed JSON yields a ParseError;
// a recognized wrapper with a broken inner shape yields a StructuralError.
func Decode(text []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	raw, err := decodeValue(dec, text)
	if err != nil {
		return nil, err
	}

	return convert(raw, nil)
}

// decodeValue reads a single JSON value off the token stream into its
// literal form; wrapper recognition happens afterwards, outside-in.
func decodeValue(dec *json.Decoder, text []byte) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, parseFailure(text, dec, err)
	}

	switch tv := tok.(type) {
	case nil:
		return NullV{}, nil
	case bool:
		return BooleanV(tv), nil
	case string:
		return StringV(tv), nil
	case json.Number:
		return decodeNumber(tv), nil
	case json.Delim:
		switch tv {
		case '[':
			return decodeArray(dec, text)
		case '{':
			return decodeObject(dec, text)
		}
	}

	return nil, ParseError{Text: string(text), Offset: dec.InputOffset(), Reason: fmt.Sprintf("unexpected token %v", tok)}
}

// decodeNumber maps integer syntax to LongV and fractional or exponent
// syntax to DoubleV, preserving the variant split through round trips.
func decodeNumber(num json.Number) Value {
	if !strings.ContainsAny(num.String(), ".eE") {
		if n, err := num.Int64(); err == nil {
			return LongV(n)
		}
	}

	// The tokenizer already validated the syntax; out of range literals
	// saturate to an infinity instead of failing the decode.
	f, _ := strconv.ParseFloat(num.String(), 64)

	return DoubleV(f)
}

// decodeArray reads array items until the closing bracket.
func decodeArray(dec *json.Decoder, text []byte) (Value, error) {
	out := ArrayV{}

	for dec.More() {
		item, err := decodeValue(dec, text)
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	if _, err := dec.Token(); err != nil {
		return nil, parseFailure(text, dec, err)
	}

	return out, nil
}

// decodeObject reads key/value members until the closing brace, keeping the
// key order as it appeared on the wire.
func decodeObject(dec *json.Decoder, text []byte) (Value, error) {
	obj := ObjectV{Fields: map[string]Value{}}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseFailure(text, dec, err)
		}

		key, ok := tok.(string)
		if !ok {
			return nil, ParseError{Text: string(text), Offset: dec.InputOffset(), Reason: fmt.Sprintf("expected object key, got %v", tok)}
		}

		val, err := decodeValue(dec, text)
		if err != nil {
			return nil, err
		}

		if _, dup := obj.Fields[key]; !dup {
			obj.Keys = append(obj.Keys, key)
		}

		obj.Fields[key] = val
	}

	if _, err := dec.Token(); err != nil {
		return nil, parseFailure(text, dec, err)
	}

	return obj, nil
}

//==============================================================================

// convert rewrites the literal parse tree outside-in, unwrapping every
// recognized wrapper form. The order matters: the {"object": {...}} escape
// must be seen before the keys below it, else a colliding inner key like
// "@set" would be unwrapped as a wrapper when the escape marks it literal.
func convert(v Value, path []interface{}) (Value, error) {
	switch tv := v.(type) {
	case ArrayV:
		out := make(ArrayV, len(tv))

		for ind, item := range tv {
			cv, err := convert(item, append(path, ind))
			if err != nil {
				return nil, err
			}

			out[ind] = cv
		}

		return out, nil

	case ObjectV:
		if len(tv.Keys) == 1 {
			key := tv.Keys[0]

			// The escaped object form protects user keys that collide with
			// wrappers: its immediate keys stay literal while their values
			// still convert normally. A non-object inner means this was a
			// plain user object that merely had an "object" key, keep it
			// as such.
			if key == "object" {
				if ov, ok := tv.Fields[key].(ObjectV); ok {
					return convertMembers(ov, append(path, key))
				}
			} else if wrapperKeys[key] {
				inner, err := convert(tv.Fields[key], append(path, key))
				if err != nil {
					return nil, err
				}

				return unwrap(key, inner, path)
			} else if strings.HasPrefix(key, "@") {
				// A wrapped form this codec does not know is a decode
				// error, not something to pass through as a plain object.
				return nil, StructuralError{Key: key, Path: path, Reason: "unrecognized wrapper"}
			}
		}

		return convertMembers(tv, path)

	default:
		return v, nil
	}
}

// convertMembers converts every member value of a literal object, keeping
// the keys themselves and their order untouched.
func convertMembers(o ObjectV, path []interface{}) (Value, error) {
	out := ObjectV{Keys: o.Keys, Fields: make(map[string]Value, len(o.Fields))}

	for _, key := range o.Keys {
		cv, err := convert(o.Fields[key], append(path, key))
		if err != nil {
			return nil, err
		}

		out.Fields[key] = cv
	}

	return out, nil
}

// unwrap converts a single-key @-wrapper object into its special value form,
// with the inner value already converted.
func unwrap(key string, inner Value, path []interface{}) (Value, error) {
	switch key {
	case "@obj":
		ov, ok := inner.(ObjectV)
		if !ok {
			return nil, StructuralError{Key: key, Path: path, Reason: "inner value is not an object"}
		}
		return ov, nil

	case "@ref":
		return unwrapRef(inner, path)

	case "@set":
		ov, ok := inner.(ObjectV)
		if !ok {
			return nil, StructuralError{Key: key, Path: path, Reason: "inner value is not an object"}
		}
		return SetRefV{Parameters: ov}, nil

	case "@ts":
		sv, ok := inner.(StringV)
		if !ok {
			return nil, StructuralError{Key: key, Path: path, Reason: "timestamp is not a string"}
		}

		ts, err := time.Parse(time.RFC3339Nano, string(sv))
		if err != nil {
			return nil, StructuralError{Key: key, Path: path, Reason: err.Error()}
		}

		return TimeV(ts.UTC()), nil

	case "@date":
		sv, ok := inner.(StringV)
		if !ok {
			return nil, StructuralError{Key: key, Path: path, Reason: "date is not a string"}
		}

		day, err := time.Parse(dateLayout, string(sv))
		if err != nil {
			return nil, StructuralError{Key: key, Path: path, Reason: err.Error()}
		}

		return DateV(day.UTC()), nil

	case "@bytes":
		sv, ok := inner.(StringV)
		if !ok {
			return nil, StructuralError{Key: key, Path: path, Reason: "bytes payload is not a string"}
		}

		raw, err := base64.StdEncoding.DecodeString(string(sv))
		if err != nil {
			return nil, StructuralError{Key: key, Path: path, Reason: err.Error()}
		}

		return BytesV(raw), nil

	case "@double":
		switch dv := inner.(type) {
		case StringV:
			f, err := strconv.ParseFloat(string(dv), 64)
			if err != nil {
				return nil, StructuralError{Key: key, Path: path, Reason: err.Error()}
			}
			return DoubleV(f), nil
		case LongV:
			return DoubleV(dv), nil
		case DoubleV:
			return dv, nil
		}

		return nil, StructuralError{Key: key, Path: path, Reason: "double is neither a string nor a number"}
	}

	return nil, StructuralError{Key: key, Path: path, Reason: "unrecognized wrapper"}
}

// unwrapRef validates the inner shape of an "@ref" wrapper and builds the
// reference chain.
func unwrapRef(inner Value, path []interface{}) (Value, error) {
	ov, ok := inner.(ObjectV)
	if !ok {
		return nil, StructuralError{Key: "@ref", Path: path, Reason: "inner value is not an object"}
	}

	var ref RefV

	id, ok := ov.Fields["id"]
	if !ok {
		return nil, StructuralError{Key: "@ref", Path: path, Reason: "missing id"}
	}

	switch iv := id.(type) {
	case StringV:
		ref.ID = string(iv)
	case LongV:
		ref.ID = strconv.FormatInt(int64(iv), 10)
	default:
		return nil, StructuralError{Key: "@ref", Path: path, Reason: fmt.Sprintf("id is a %s, want a string", Tag(id))}
	}

	if col, ok := ov.Fields["collection"]; ok {
		cref, ok := col.(RefV)
		if !ok {
			return nil, StructuralError{Key: "@ref", Path: path, Reason: "collection is not a reference"}
		}
		ref.Collection = &cref
	}

	if db, ok := ov.Fields["database"]; ok {
		dref, ok := db.(RefV)
		if !ok {
			return nil, StructuralError{Key: "@ref", Path: path, Reason: "database is not a reference"}
		}
		ref.Database = &dref
	}

	return ref, nil
}

// parseFailure maps a stdlib decode error into a ParseError carrying the
// source text and, where available, the offset.
func parseFailure(text []byte, dec *json.Decoder, err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return ParseError{Text: string(text), Offset: syn.Offset, Reason: syn.Error()}
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ParseError{Text: string(text), Offset: dec.InputOffset(), Reason: "unexpected end of JSON input"}
	}

	return ParseError{Text: string(text), Offset: dec.InputOffset(), Reason: err.Error()}
}
