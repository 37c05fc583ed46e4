// Package web provides the default HTTP transport for the faunalink client,
// posting request bodies as application/json and authenticating through
// basic auth with the session secret.
package web

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/influx6/faunalink"
	"github.com/influx6/faunalink/client"
)

//==============================================================================

// defaultTimeout caps a request round trip when the config supplies none.
const defaultTimeout = 30 * time.Second

// Config provies the settings for a new HTTP transport.
type Config struct {
	Endpoint string
	Secret   string
	Timeout  time.Duration
}

// Transport provides a http implementation of the client.Transport
// interface over a shared stdlib http client.
type Transport struct {
	endpoint *url.URL
	secret   string
	client   *http.Client
}

// New returns a HTTP transport for the giving endpoint.
func New(c Config) (*Transport, error) {
	endpoint, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, err
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	tr := Transport{
		endpoint: endpoint,
		secret:   c.Secret,
		client:   &http.Client{Timeout: c.Timeout},
	}

	return &tr, nil
}

// WithSecret returns a transport bound to the giving secret, borrowing this
// transport's http client and its connection pool.
func (t *Transport) WithSecret(secret string) client.Transport {
	tr := Transport{
		endpoint: t.endpoint,
		secret:   secret,
		client:   t.client,
	}

	return &tr
}

// Do issues the request against the endpoint and collects the status and
// raw body into a request result.
func (t *Transport) Do(method string, path string, body []byte, params url.Values) (faunalink.RequestResult, error) {
	rr := faunalink.RequestResult{
		Method: method,
		Path:   path,
		Query:  params,
		Body:   string(body),
	}

	target := *t.endpoint
	target.Path = joinPath(target.Path, path)
	if params != nil {
		target.RawQuery = params.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, target.String(), rd)
	if err != nil {
		return rr, err
	}

	req.SetBasicAuth(t.secret, "")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	res, err := t.client.Do(req)
	if err != nil {
		return rr, err
	}

	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return rr, err
	}

	rr.StatusCode = res.StatusCode
	rr.Response = string(data)

	return rr, nil
}

// joinPath appends the request path onto the endpoint path without doubling
// separators.
func joinPath(base string, path string) string {
	if path == "" {
		return base
	}

	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
