package outcome

import (
	"encoding/json"
	"net/http"
	"strings"
)

// FromResponse normalizes a non-2xx response into a Failure. The message is
// taken from the first recognised field of a JSON body:
// message, error, error_description, detail, errors[0] (string or object
// with message). Anything else falls back to the status text.
func FromResponse(status int, body []byte) *Failure {
	return &Failure{
		Kind:    KindForStatus(status),
		Message: messageFromBody(status, body),
		Status:  status,
	}
}

// FromResponseAs is FromResponse with an explicit kind, used by callers
// (login, refresh) for which any rejection means one specific thing.
func FromResponseAs(kind Kind, status int, body []byte) *Failure {
	f := FromResponse(status, body)
	f.Kind = kind
	return f
}

func messageFromBody(status int, body []byte) string {
	fallback := http.StatusText(status)
	if fallback == "" {
		fallback = "unexpected status"
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return fallback
	}

	for _, key := range []string{"message", "error", "error_description", "detail"} {
		if raw, ok := doc[key]; ok {
			if s := stringOrMessage(raw); s != "" {
				return s
			}
		}
	}

	if raw, ok := doc["errors"]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			if s := stringOrMessage(list[0]); s != "" {
				return s
			}
		}
	}

	return fallback
}

// stringOrMessage accepts "text" or {"message": "text"}.
func stringOrMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}
