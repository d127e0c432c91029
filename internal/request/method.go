package request

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is one of the HTTP verbs the client issues.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// Methods lists every supported verb.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}
}

// ParseMethod maps a case-insensitive verb name to a Method.
func ParseMethod(s string) (Method, error) {
	candidate := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range Methods() {
		if m == candidate {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

func (m Method) String() string {
	return string(m)
}

// carriesBody reports whether parameters are sent as a request body.
func (m Method) carriesBody() bool {
	return m != MethodGet
}
