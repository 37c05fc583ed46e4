// Package faunalink provides a typed client-side library for querying remote
// document databases that speak the FaunaDB wire protocol. Queries are built
// as immutable expression trees, posted over an injectable transport, and the
// replies come back as a closed set of typed values that can be navigated
// safely with the fields package instead of raw map digging.
// eg
/*

  res, err := cl.Query("example-app", faunalink.Obj(
  	faunalink.KV("data", faunalink.Arr(faunalink.Str("x"), faunalink.Str("y"))),
  ))

  names := fields.Collect(fields.Root.At(fields.Key("data")), fields.To(fields.Root, fields.AsString))
  xs, failure := names.Extract(res)

*/
package faunalink
