package faunalink

//==============================================================================

// Expr defines the closed set of query expressions the client can submit.
// Expressions are immutable trees built by the caller, encoded once per
// request and discarded; building one never performs I/O.
type Expr interface {
	exprNode()
}

//==============================================================================

// NullE represents a literal null expression.
type NullE struct{}

// BooleanE represents a literal boolean expression.
type BooleanE bool

// StringE represents a literal string expression.
type StringE string

// LongE represents a literal 64-bit integer expression.
type LongE int64

// DoubleE represents a literal double expression.
type DoubleE float64

// ArrayE represents an ordered sequence of expressions.
type ArrayE []Expr

// Pair holds a single key/expression entry of an ObjectE.
type Pair struct {
	Key  string
	Expr Expr
}

// ObjectE represents a mapping of unique string keys to expressions. The
// pair slice keeps insertion order so the encoded form is stable.
type ObjectE []Pair

// ExprsE represents a sequence of expressions submitted as a bare top-level
// JSON array, used only for multi-query submission. It is not a general
// purpose variant and never nests inside another expression.
type ExprsE []Expr

func (NullE) exprNode()    {}
func (BooleanE) exprNode() {}
func (StringE) exprNode()  {}
func (LongE) exprNode()    {}
func (DoubleE) exprNode()  {}
func (ArrayE) exprNode()   {}
func (ObjectE) exprNode()  {}
func (ExprsE) exprNode()   {}

//==============================================================================

// Null returns a literal null expression.
func Null() Expr {
	return NullE{}
}

// Bool returns a literal boolean expression.
func Bool(b bool) Expr {
	return BooleanE(b)
}

// Str returns a literal string expression.
func Str(s string) Expr {
	return StringE(s)
}

// Long returns a literal 64-bit integer expression.
func Long(n int64) Expr {
	return LongE(n)
}

// Double returns a literal double expression.
func Double(n float64) Expr {
	return DoubleE(n)
}

// Arr returns an array expression from the giving items.
func Arr(items ...Expr) Expr {
	return ArrayE(items)
}

// KV returns a key/expression pair for use with Obj.
func KV(key string, expr Expr) Pair {
	return Pair{Key: key, Expr: expr}
}

// Obj returns an object expression whose keys keep the order the pairs are
// supplied in. A duplicated key keeps its first position but takes the last
// supplied expression.
func Obj(pairs ...Pair) Expr {
	out := make(ObjectE, 0, len(pairs))

	for _, p := range pairs {
		var replaced bool

		for ind, existing := range out {
			if existing.Key == p.Key {
				out[ind].Expr = p.Expr
				replaced = true
				break
			}
		}

		if !replaced {
			out = append(out, p)
		}
	}

	return out
}

// Queries wraps the giving expressions for multi-query submission, encoding
// them as a bare top-level JSON array.
func Queries(exprs ...Expr) Expr {
	return ExprsE(exprs)
}
