package client

import (
	"net/url"

	"github.com/influx6/faunalink"
)

//==============================================================================

// Transport defines an interface for request transports, which allows us
// build custom transports based on different low-level systems (HTTP,
// in-memory fakes for tests). The client never looks past this contract:
// connection pooling, TLS and timeouts all belong to the transport.
type Transport interface {
	Do(method string, path string, body []byte, params url.Values) (faunalink.RequestResult, error)

	// WithSecret returns a transport bound to the giving secret for
	// authentication while sharing the parent's underlying resources.
	WithSecret(secret string) Transport
}
