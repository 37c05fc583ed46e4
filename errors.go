package faunalink

import (
	"fmt"
	"strings"
)

//==============================================================================

// BadRequest is returned for a status 400 response.
type BadRequest struct{ QueryErrorResponse }

// Unauthorized is returned for a status 401 response.
type Unauthorized struct{ QueryErrorResponse }

// PermissionDenied is returned for a status 403 response.
type PermissionDenied struct{ QueryErrorResponse }

// NotFound is returned for a status 404 response.
type NotFound struct{ QueryErrorResponse }

// InternalError is returned for a status 500 response.
type InternalError struct{ QueryErrorResponse }

// Unavailable is returned for a status 503 response.
type Unavailable struct{ QueryErrorResponse }

// UnknownError is returned for any other non-2xx response.
type UnknownError struct{ QueryErrorResponse }

// Error returns the status and server reported details for this failure.
func (e BadRequest) Error() string { return e.describe("bad request") }

// Error returns the status and server reported details for this failure.
func (e Unauthorized) Error() string { return e.describe("unauthorized") }

// Error returns the status and server reported details for this failure.
func (e PermissionDenied) Error() string { return e.describe("permission denied") }

// Error returns the status and server reported details for this failure.
func (e NotFound) Error() string { return e.describe("not found") }

// Error returns the status and server reported details for this failure.
func (e InternalError) Error() string { return e.describe("internal error") }

// Error returns the status and server reported details for this failure.
func (e Unavailable) Error() string { return e.describe("unavailable") }

// Error returns the status and server reported details for this failure.
func (e UnknownError) Error() string { return e.describe("unknown error") }

// describe renders the taxonomy name, status code and every server reported
// error detail into one line.
func (q QueryErrorResponse) describe(kind string) string {
	var details []string
	for _, qe := range q.Errors {
		details = append(details, fmt.Sprintf("%s: %s", qe.Code, qe.Description))
	}

	if len(details) == 0 {
		return fmt.Sprintf("faunalink: %s (status %d)", kind, q.StatusCode)
	}

	return fmt.Sprintf("faunalink: %s (status %d): %s", kind, q.StatusCode, strings.Join(details, "; "))
}

//==============================================================================

// Classify maps the finished request into exactly one typed error, or nil
// for a 2xx status. The body is decoded for its error details, but a body
// that fails to decode never fails classification itself: status driven
// control flow must not be masked by a body parsing problem, so the typed
// error simply carries an empty detail list.
func Classify(rr RequestResult) error {
	if rr.StatusCode >= 200 && rr.StatusCode < 300 {
		return nil
	}

	resp := QueryErrorResponse{
		StatusCode: rr.StatusCode,
		Errors:     decodeQueryErrors(rr.Response),
	}

	switch rr.StatusCode {
	case 400:
		return BadRequest{resp}
	case 401:
		return Unauthorized{resp}
	case 403:
		return PermissionDenied{resp}
	case 404:
		return NotFound{resp}
	case 500:
		return InternalError{resp}
	case 503:
		return Unavailable{resp}
	default:
		return UnknownError{resp}
	}
}

// decodeQueryErrors pulls the ordered "errors" list out of a failed response
// body. Anything that does not line up with the error envelope is skipped
// rather than reported, per the classification contract.
func decodeQueryErrors(body string) []QueryError {
	root, err := Decode([]byte(body))
	if err != nil {
		return nil
	}

	obj, ok := root.(ObjectV)
	if !ok {
		return nil
	}

	list, ok := obj.Fields["errors"].(ArrayV)
	if !ok {
		return nil
	}

	var out []QueryError

	for _, entry := range list {
		eo, ok := entry.(ObjectV)
		if !ok {
			continue
		}

		qe := QueryError{Position: decodePosition(eo.Fields["position"])}

		if code, ok := eo.Fields["code"].(StringV); ok {
			qe.Code = string(code)
		}

		if desc, ok := eo.Fields["description"].(StringV); ok {
			qe.Description = string(desc)
		}

		if failures, ok := eo.Fields["failures"].(ArrayV); ok {
			for _, f := range failures {
				fo, ok := f.(ObjectV)
				if !ok {
					continue
				}

				vf := ValidationFailure{Field: decodePosition(fo.Fields["field"])}

				if code, ok := fo.Fields["code"].(StringV); ok {
					vf.Code = string(code)
				}

				if desc, ok := fo.Fields["description"].(StringV); ok {
					vf.Description = string(desc)
				}

				qe.Failures = append(qe.Failures, vf)
			}
		}

		out = append(out, qe)
	}

	return out
}

// decodePosition converts a position path of string keys and integer indexes
// into its plain form.
func decodePosition(v Value) []interface{} {
	arr, ok := v.(ArrayV)
	if !ok {
		return nil
	}

	out := make([]interface{}, 0, len(arr))

	for _, step := range arr {
		switch sv := step.(type) {
		case StringV:
			out = append(out, string(sv))
		case LongV:
			out = append(out, int(sv))
		default:
			out = append(out, fmt.Sprintf("%v", sv))
		}
	}

	return out
}
