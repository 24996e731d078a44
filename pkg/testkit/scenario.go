// Package testkit drives HTTP tests against the full handler stack.
//
// A scenario file is a JSON document listing requests that share one cookie
// jar, so a login in the first step carries over to the next:
//
//	{
//	  "name": "customer checkout",
//	  "steps": [
//	    {"method": "POST", "url": "/api/login/",
//	     "body": {"username": "cliente", "password": "secret"}, "expectedCode": 200},
//	    {"method": "POST", "url": "/api/checkout/", "expectedCode": 400,
//	     "expectedBody": {"message": "cart is empty"}}
//	  ]
//	}
//
// expectedBody is matched as a subset of the response. responseFileName
// names a file, relative to the scenario, that must match exactly. Keep those
// files in a subdirectory: RunDir treats every top-level *.json as a scenario.
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`

	dir string
}

type Step struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`

	// Exactly one of Body (JSON) or Form may be set.
	Body json.RawMessage   `json:"body"`
	Form map[string]string `json:"form"`

	ExpectedCode     int             `json:"expectedCode"`
	ExpectedLocation string          `json:"expectedLocation"`
	ExpectedBody     json.RawMessage `json:"expectedBody"`
	ResponseFileName string          `json:"responseFileName"`
}

func (s *Step) label(i int) string {
	return fmt.Sprintf("step %d: %s %s", i+1, s.Method, s.URL)
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("steps[%d].expectedCode is required", i)
		}
		if len(st.Body) > 0 && len(st.Form) > 0 {
			return fmt.Errorf("steps[%d]: body and form are exclusive", i)
		}
		st.Method = strings.ToUpper(st.Method)
		if st.Method == "" {
			st.Method = "GET"
		}
	}
	return nil
}

// responsePath resolves a step's response file against the scenario dir.
func (s *Scenario) responsePath(st Step) string {
	if st.ResponseFileName == "" || filepath.IsAbs(st.ResponseFileName) {
		return st.ResponseFileName
	}
	return filepath.Join(s.dir, st.ResponseFileName)
}
