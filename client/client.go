// Package client provides the request façade of the faunalink library: it
// encodes expressions, hands them to a transport, classifies the outcome and
// returns decoded values with the response envelope stripped.
package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/influx6/faunalink"
	"github.com/influx6/faunalink/fields"
	"github.com/pborman/uuid"
)

//==============================================================================

// resourceField strips the {"resource": ...} envelope every successful
// response body carries.
var resourceField = fields.Root.At(fields.Key("resource"))

// resourceString reads a plain string resource, used by Ping.
var resourceString = fields.To(resourceField, fields.AsString)

// resourceList reads the per-expression results of a multi-query submission
// in their submitted order.
var resourceList = fields.Collect(resourceField, fields.To(fields.Root, fields.AsValue))

//==============================================================================

// Client provides the query façade over a transport. A Client holds no
// mutable state after construction, so one instance may serve arbitrarily
// many goroutines; session clients are new instances borrowing the same
// transport, never mutations of their parent.
type Client struct {
	faunalink.EventLog
	transport Transport
}

// New returns a new Client issuing its requests through the giving
// transport. A nil events logger is replaced with a silent one.
func New(events faunalink.EventLog, transport Transport) *Client {
	if events == nil {
		events = faunalink.SilentLog
	}

	cl := Client{
		EventLog:  events,
		transport: transport,
	}

	return &cl
}

// NewSessionClient returns a client that authenticates with the giving
// secret while sharing this client's transport resources.
func (c *Client) NewSessionClient(secret string) *Client {
	return New(c.EventLog, c.transport.WithSecret(secret))
}

//==============================================================================

// Query submits a single expression and returns its decoded resource.
func (c *Client) Query(context interface{}, expr faunalink.Expr) (faunalink.Value, error) {
	rid := uuid.New()
	c.Log(context, "Client.Query", "Started : Request[%s]", rid)

	root, err := c.roundTrip(context, rid, expr)
	if err != nil {
		c.Error(context, "Client.Query", err, "Completed : Request[%s]", rid)
		return nil, err
	}

	resource, failure := resourceField.Extract(root)
	if failure != nil {
		c.Error(context, "Client.Query", failure, "Completed : Request[%s]", rid)
		return nil, failure
	}

	c.Log(context, "Client.Query", "Completed : Request[%s]", rid)
	return resource, nil
}

// MultiQuery submits all the giving expressions in one request and returns
// their resources in submission order. A server-reported error fails the
// whole call; there is no partial success.
func (c *Client) MultiQuery(context interface{}, exprs ...faunalink.Expr) ([]faunalink.Value, error) {
	rid := uuid.New()
	c.Log(context, "Client.MultiQuery", "Started : Request[%s] : Queries[%d]", rid, len(exprs))

	root, err := c.roundTrip(context, rid, faunalink.Queries(exprs...))
	if err != nil {
		c.Error(context, "Client.MultiQuery", err, "Completed : Request[%s]", rid)
		return nil, err
	}

	results, failure := resourceList.Extract(root)
	if failure != nil {
		c.Error(context, "Client.MultiQuery", failure, "Completed : Request[%s]", rid)
		return nil, failure
	}

	c.Log(context, "Client.MultiQuery", "Completed : Request[%s]", rid)
	return results, nil
}

// Ping issues a health check against the giving replication scope (node,
// local, global or all; the endpoint defaults to global when none is sent)
// and returns the reported status line. The timeout is passed through as a
// query parameter in milliseconds, it is not enforced on this side.
func (c *Client) Ping(context interface{}, scope string, timeout time.Duration) (string, error) {
	rid := uuid.New()
	c.Log(context, "Client.Ping", "Started : Request[%s] : Scope[%s]", rid, scope)

	params := url.Values{}
	if scope != "" {
		params.Set("scope", scope)
	}
	if timeout > 0 {
		params.Set("timeout", strconv.FormatInt(timeout.Milliseconds(), 10))
	}

	rr, err := c.transport.Do("GET", "ping", nil, params)
	if err != nil {
		c.Error(context, "Client.Ping", err, "Completed : Request[%s]", rid)
		return "", err
	}

	rr.RID = rid

	root, err := c.finish(rr)
	if err != nil {
		c.Error(context, "Client.Ping", err, "Completed : Request[%s]", rid)
		return "", err
	}

	status, failure := resourceString.Extract(root)
	if failure != nil {
		c.Error(context, "Client.Ping", failure, "Completed : Request[%s]", rid)
		return "", failure
	}

	c.Log(context, "Client.Ping", "Completed : Request[%s] : Status[%s]", rid, status)
	return status, nil
}

//==============================================================================

// roundTrip encodes the expression, posts it as the whole request body and
// returns the decoded response tree.
func (c *Client) roundTrip(context interface{}, rid string, expr faunalink.Expr) (faunalink.Value, error) {
	body, err := faunalink.Encode(expr)
	if err != nil {
		return nil, err
	}

	c.Log(context, "Client.roundTrip", "Info : Request[%s] : Body : %s", rid, body)

	rr, err := c.transport.Do("POST", "", body, nil)
	if err != nil {
		return nil, err
	}

	rr.RID = rid

	return c.finish(rr)
}

// finish runs the status classification and, when the request succeeded,
// decodes the body into a value tree.
func (c *Client) finish(rr faunalink.RequestResult) (faunalink.Value, error) {
	if err := faunalink.Classify(rr); err != nil {
		return nil, err
	}

	return faunalink.Decode([]byte(rr.Response))
}
