package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Response is a decoded JSON reply. The errors and message fields the store
// cares about are lifted out once here; everything else stays in Body.
type Response struct {
	StatusCode int
	Body       json.RawMessage

	HasErrors  bool
	Errors     []string
	HasMessage bool
	Message    string

	// Superseded is set when a newer call began before this reply was
	// parsed. Such replies leave the store untouched.
	Superseded bool
}

// Decode unmarshals the full body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return errors.New("nil response")
	}
	return json.Unmarshal(r.Body, v)
}

const snippetLimit = 256

func parseResponse(statusCode int, body []byte) (*Response, error) {
	if !json.Valid(body) {
		var probe any
		err := json.Unmarshal(body, &probe)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, &ParseError{StatusCode: statusCode, Snippet: snippet(body), Err: err}
	}

	resp := &Response{
		StatusCode: statusCode,
		Body:       json.RawMessage(bytes.Clone(body)),
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Arrays and scalars carry no errors or message.
		return resp, nil
	}

	if raw, ok := fields["errors"]; ok && truthy(raw) {
		resp.HasErrors = true
		resp.Errors = normalizeErrors(raw)
	}
	if raw, ok := fields["message"]; ok && truthy(raw) {
		resp.HasMessage = true
		resp.Message = text(raw)
	}
	return resp, nil
}

// truthy mirrors JavaScript truthiness for a JSON value: null, false, 0 and
// the empty string are falsy, every array and object is truthy.
func truthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case 'n', 'f':
		return false
	case 't', '[', '{':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return false
		}
		return s != ""
	default:
		f, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return false
		}
		return f != 0
	}
}

// normalizeErrors turns the errors field into a list. A string becomes a
// one-element list, an array keeps its elements, anything else becomes a
// one-element list holding its JSON text.
func normalizeErrors(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}

	var many []json.RawMessage
	if err := json.Unmarshal(raw, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, item := range many {
			out = append(out, text(item))
		}
		return out
	}

	return []string{text(raw)}
}

// text renders a JSON value for display: strings unquoted, everything else
// as compact JSON.
func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

func snippet(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > snippetLimit {
		trimmed = trimmed[:snippetLimit]
	}
	return string(trimmed)
}
