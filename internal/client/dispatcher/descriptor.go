package dispatcher

import (
	"fmt"
	"net/http"
	"strings"
)

// Descriptor describes one logical request.
//
// Path is relative to the dispatcher's base URL and must start with "/".
// Body is JSON-encoded unless it is a []byte or json.RawMessage, which are
// sent verbatim. Header values are added to every attempt of the request.
type Descriptor struct {
	Method string
	Path   string
	Body   any
	Header http.Header

	retried bool
}

// NewDescriptor is a shorthand for Descriptor{Method: method, Path: path, Body: body}.
func NewDescriptor(method, path string, body any) Descriptor {
	return Descriptor{Method: method, Path: path, Body: body}
}

// Retried reports whether the descriptor was already replayed after a refresh.
func (d Descriptor) Retried() bool {
	return d.retried
}

// MarkRetried returns a copy of d flagged as replayed.
func (d Descriptor) MarkRetried() Descriptor {
	d.retried = true
	return d
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Validate rejects descriptors that must not reach the network.
func (d Descriptor) Validate() error {
	if _, ok := allowedMethods[d.Method]; !ok {
		return fmt.Errorf("unsupported method %q", d.Method)
	}
	if d.Path == "" {
		return fmt.Errorf("path is required")
	}
	if !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("path %q must start with /", d.Path)
	}
	if d.Method == http.MethodGet && d.Body != nil {
		return fmt.Errorf("GET request must not carry a body")
	}
	return nil
}
