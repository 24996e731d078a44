package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Client drives a handler through a real listener. It keeps cookies between
// calls, like a browser, and never follows redirects so tests can assert on
// the Location header.
type Client struct {
	t      *testing.T
	server *httptest.Server
	http   *http.Client
	header http.Header
}

// Response is a fully read response.
type Response struct {
	Code   int
	Header http.Header
	Body   []byte
}

// Location is the redirect target, or "".
func (r *Response) Location() string { return r.Header.Get("Location") }

// JSON decodes the body into a generic value.
func (r *Response) JSON(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(r.Body, &out), "body: %s", r.Body)
	return out
}

// NewClient starts handler on a loopback listener for the test's lifetime.
func NewClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &Client{
		t:      t,
		server: srv,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		header: http.Header{},
	}
}

// URL returns the absolute URL of path on the test server.
func (c *Client) URL(path string) string { return c.server.URL + path }

// SetHeader adds a header to every following request.
func (c *Client) SetHeader(key, value string) { c.header.Set(key, value) }

// Jar is the client's cookie jar, for dialers that need the session.
func (c *Client) Jar() http.CookieJar { return c.http.Jar }

// Open sends a GET and hands back the unread response, for streamed
// bodies. The body is closed when the test ends.
func (c *Client) Open(path string) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.URL(path), nil)
	require.NoError(c.t, err)
	for k, vs := range c.header {
		req.Header[k] = vs
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *Client) Get(path string) *Response {
	return c.Do(http.MethodGet, path, nil, "")
}

// PostForm sends an urlencoded form.
func (c *Client) PostForm(path string, form url.Values) *Response {
	return c.Do(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// PostJSON sends v encoded as JSON. A []byte or string is sent verbatim.
func (c *Client) PostJSON(path string, v interface{}) *Response {
	return c.Do(http.MethodPost, path, bytes.NewReader(encode(c.t, v)), "application/json")
}

// Do sends one request.
func (c *Client) Do(method, path string, body io.Reader, contentType string) *Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.URL(path), body)
	require.NoError(c.t, err)
	for k, vs := range c.header {
		req.Header[k] = vs
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return &Response{Code: resp.StatusCode, Header: resp.Header, Body: data}
}

func encode(t *testing.T, v interface{}) []byte {
	switch b := v.(type) {
	case nil:
		return nil
	case []byte:
		return b
	case string:
		return []byte(b)
	case json.RawMessage:
		return b
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
