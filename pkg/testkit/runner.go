package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Run executes the scenario at path as a subtest with a fresh client.
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, NewClient(t, handler), s)
	})
}

// RunDir runs every *.json file in dir. newHandler is called per scenario so
// each one starts from its own state.
func RunDir(t *testing.T, dir string, newHandler func(t *testing.T) http.Handler) {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: %v", err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, NewClient(t, newHandler(t)), s)
		})
	}
}

func runScenario(t *testing.T, c *Client, s *Scenario) {
	t.Helper()
	for i, st := range s.Steps {
		label := st.label(i)

		var (
			body        io.Reader
			contentType string
		)
		switch {
		case len(st.Body) > 0:
			body, contentType = bytes.NewReader(st.Body), "application/json"
		case len(st.Form) > 0:
			form := url.Values{}
			for k, v := range st.Form {
				form.Set(k, v)
			}
			body, contentType = strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"
		}

		for k, v := range st.Headers {
			c.SetHeader(k, v)
		}
		resp := c.Do(st.Method, st.URL, body, contentType)

		if !assert.Equal(t, st.ExpectedCode, resp.Code, "[%s] %s: status\nbody: %s", s.Name, label, resp.Body) {
			continue
		}
		if st.ExpectedLocation != "" {
			assert.Equal(t, st.ExpectedLocation, resp.Location(), "[%s] %s: location", s.Name, label)
		}
		if len(st.ExpectedBody) > 0 {
			AssertJSONSubset(t, st.ExpectedBody, resp.Body, "[%s] %s", s.Name, label)
		}
		if p := s.responsePath(st); p != "" {
			expected, err := os.ReadFile(p)
			if assert.NoError(t, err, "[%s] %s: read response file", s.Name, label) {
				AssertJSONEqual(t, expected, resp.Body, "[%s] %s", s.Name, label)
			}
		}
	}
}
