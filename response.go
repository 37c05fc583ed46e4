package faunalink

import "net/url"

//==============================================================================

// Identity provides a interface that defines a request ID member method.
type Identity interface {
	RequestID() string
}

//==============================================================================

// RequestResult packs the status code and raw body of a finished request
// together with the echoed request metadata, for diagnostics and error
// classification.
type RequestResult struct {
	RID        string
	Method     string
	Path       string
	Query      url.Values
	Body       string
	StatusCode int
	Response   string
}

// RequestID returns the request id stamped on this result.
func (r RequestResult) RequestID() string {
	return r.RID
}

//==============================================================================

// QueryError holds a single server-reported error detail: the position path
// into the offending query, a symbolic code and a human description.
type QueryError struct {
	Position    []interface{}
	Code        string
	Description string
	Failures    []ValidationFailure
}

// ValidationFailure holds the per-field detail nested inside validation
// style query errors.
type ValidationFailure struct {
	Field       []interface{}
	Code        string
	Description string
}

// QueryErrorResponse holds the status code of a failed request and the
// ordered list of error details decoded from its body.
type QueryErrorResponse struct {
	StatusCode int
	Errors     []QueryError
}
