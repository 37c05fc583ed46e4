// Package streams provides an asynchronous dispatch pipeline over the
// faunalink client: submissions are injected into a worker stream and their
// results are matched back to callers by request ID.
package streams

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/influx6/faunalink"
	"github.com/influx6/faunalink/client"
	"github.com/influx6/faux/sumex"
	"github.com/pborman/uuid"
)

//==============================================================================

// ErrRequestTimeout is returned when the maximum wait time for a submission
// passes without a matching result.
var ErrRequestTimeout = errors.New("faunalink: request timed out")

// ErrStreamClosed is returned to waiters still holding out for a result when
// the stream shuts down underneath them.
var ErrStreamClosed = errors.New("faunalink: stream closed")

//==============================================================================

// Request carries one submission through the stream.
type Request struct {
	ID    string
	Exprs []faunalink.Expr
}

// RequestID returns the request id for this submission.
func (r *Request) RequestID() string {
	return r.ID
}

// Result carries the decoded resources for a finished submission, in the
// order its expressions were submitted.
type Result struct {
	ID     string
	Values []faunalink.Value
}

// RequestID returns the request id this result answers.
func (r *Result) RequestID() string {
	return r.ID
}

// RequestError ties a failed submission to its request ID so it can be
// routed back to the caller that is waiting on it.
type RequestError struct {
	ID  string
	Err error
}

// Error returns the underlying failure.
func (r *RequestError) Error() string {
	return r.Err.Error()
}

// Unwrap exposes the typed error produced by the façade.
func (r *RequestError) Unwrap() error {
	return r.Err
}

// RequestID returns the request id for this failure.
func (r *RequestError) RequestID() string {
	return r.ID
}

//==============================================================================

// queryProc implements sumex.Proc, executing submissions against the client
// façade as they come off the stream.
type queryProc struct {
	client *client.Client
}

// Do performs the query for a submission, turning a façade failure into a
// RequestError so it stays matchable by ID.
func (q queryProc) Do(data interface{}, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}

	req, ok := data.(*Request)
	if !ok {
		return data, nil
	}

	values, qerr := q.client.MultiQuery("streams.queryProc", req.Exprs...)
	if qerr != nil {
		return nil, &RequestError{ID: req.ID, Err: qerr}
	}

	return &Result{ID: req.ID, Values: values}, nil
}

//==============================================================================

// Config provies a configuration for a new QueryStream.
type Config struct {
	Log     faunalink.EventLog
	Wait    time.Duration
	Workers int
}

// QueryStream provides the worker stream submissions are injected into and
// results are read back out of.
type QueryStream struct {
	*Config
	sumex.Streams
}

// New returns a new QueryStream executing its submissions through the
// giving client, setting the wait time and worker counts.
func New(c Config, cl *client.Client) *QueryStream {
	if c.Log == nil {
		c.Log = faunalink.SilentLog
	}

	if c.Wait == 0 {
		c.Wait = 2 * time.Minute
	}

	if c.Workers == 0 {
		c.Workers = 4
	}

	qs := QueryStream{
		Config:  &c,
		Streams: sumex.New(c.Workers, queryProc{client: cl}),
	}

	return &qs
}

// Submit injects the giving expressions as one submission and returns its
// request ID immediately; the result is read later through ReadResult or
// ResultStream.
func (q *QueryStream) Submit(context interface{}, exprs ...faunalink.Expr) string {
	rid := uuid.New()
	q.Log.Log(context, "QueryStream.Submit", "Started : Request[%s] : Queries[%d]", rid, len(exprs))

	q.Inject(&Request{ID: rid, Exprs: exprs})

	q.Log.Log(context, "QueryStream.Submit", "Completed : Request[%s]", rid)
	return rid
}

// Query submits the giving expressions and blocks until their results
// arrive or the configured wait time passes. The result stream is attached
// before the submission is injected, so a fast worker cannot finish before
// anyone listens.
func (q *QueryStream) Query(context interface{}, exprs ...faunalink.Expr) ([]faunalink.Value, error) {
	rid := uuid.New()
	q.Log.Log(context, "QueryStream.Query", "Started : Request[%s] : Queries[%d]", rid, len(exprs))

	rs, re := ResultStream(q.Config.Log, context, q.Wait, rid, q.Streams)

	q.Inject(&Request{ID: rid, Exprs: exprs})

	var res *Result
	var err error

	select {
	case res = <-rs:
	case err = <-re:
	}

	if err != nil {
		q.Log.Error(context, "QueryStream.Query", err, "Completed : Request[%s]", rid)
		return nil, err
	}

	q.Log.Log(context, "QueryStream.Query", "Completed : Request[%s]", rid)
	return res.Values, nil
}

//==============================================================================

// ReadResult uses the ResultStream providing a decorating and allows its
// return values to be returned as a normal function call.
func ReadResult(e faunalink.EventLog, context interface{}, maxWait time.Duration, rid string, in sumex.Streams) (*Result, error) {
	e.Log(context, "ReadResult", "Started : Request[%s]", rid)

	rs, re := ResultStream(e, context, maxWait, rid, in)

	var res *Result
	var rerr error

	select {
	case res = <-rs:
	case rerr = <-re:
	}

	if rerr != nil {
		e.Error(context, "ReadResult", rerr, "Completed")
		return nil, rerr
	}

	e.Log(context, "ReadResult", "Completed")
	return res, nil
}

// ResultStream returns a channel that responds with the result for a
// specific request ID, and a channel delivering its failure instead.
func ResultStream(e faunalink.EventLog, context interface{}, maxWait time.Duration, rid string, in sumex.Streams) (<-chan *Result, <-chan error) {
	e.Log(context, "ResultStream", "Started : Request[%s]", rid)

	out := make(chan *Result)
	outerr := make(chan error)

	// Create receivers and pass the needed information into the out stream
	// if the RequestID() matches.
	rc, rcs := sumex.Receive(in)
	re, res := sumex.ReceiveError(in)

	go func() {
		e.Log(context, "ResultStream.GoRoutine", "Start")
		defer rcs.Shutdown()
		defer res.Shutdown()

		var dead int64

		for {
			// Both receive channels closing means the stream shut down with
			// this submission still unanswered; the waiter must be released,
			// not left blocked on a silent channel.
			if atomic.LoadInt64(&dead) > 1 {
				err := RequestError{ID: rid, Err: ErrStreamClosed}
				e.Log(context, "ResultStream.GoRoutine", "Info : Stream Closed : ID[%s]", rid)
				outerr <- &err
				e.Log(context, "ResultStream.GoRoutine", "Completed")
				return
			}

			select {
			case ru, ok := <-rc:
				if !ok {
					rc = nil
					atomic.AddInt64(&dead, 1)
					continue
				}

				result, rok := ru.(*Result)
				if !rok {
					continue
				}

				if result.RequestID() != rid {
					continue
				}

				e.Log(context, "ResultStream.GoRoutine", "Info : Received Result : ID[%s]", result.RequestID())
				out <- result
				e.Log(context, "ResultStream.GoRoutine", "Completed")
				return

			case eu, ok := <-re:
				if !ok {
					re = nil
					atomic.AddInt64(&dead, 1)
					continue
				}

				rerr, rok := eu.(*RequestError)
				if !rok {
					continue
				}

				if rerr.RequestID() != rid {
					continue
				}

				e.Log(context, "ResultStream.GoRoutine", "Info : Received Error : ID[%s]", rerr.RequestID())
				outerr <- rerr
				e.Log(context, "ResultStream.GoRoutine", "Completed")
				return

			case <-time.After(maxWait):
				err := RequestError{ID: rid, Err: ErrRequestTimeout}
				e.Log(context, "ResultStream.GoRoutine", "Info : Timed Out : ID[%s]", rid)
				outerr <- &err
				e.Log(context, "ResultStream.GoRoutine", "Completed")
				return
			}
		}
	}()

	e.Log(context, "ResultStream", "Completed")
	return out, outerr
}
