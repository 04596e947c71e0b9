package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"todo/internal/service"
)

// Codes reported when the tasks table is missing.
const (
	codeUndefinedTable = "42P01"
	codeTableNotFound  = "PGRST205"
)

// missingRelation matches Postgres's undefined-table text for the tasks
// table, with or without a schema prefix.
var missingRelation = regexp.MustCompile(`relation "(?:[A-Za-z_][A-Za-z0-9_]*\.)?` + regexp.QuoteMeta(TasksTable) + `" does not exist`)

// StatusError records the HTTP status and backend code of a failed call.
type StatusError struct {
	Status int
	Code   string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d (%s)", e.Status, e.Code)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// errorBody covers both error shapes: the table endpoint's
// {code, message, details, hint} and the auth endpoint's
// {code, error_code, msg} or {error, error_description}.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	ErrorText        string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Details          string          `json:"details"`
	Hint             string          `json:"hint"`
}

func (b errorBody) code() string {
	if len(b.Code) == 0 {
		return b.ErrorCode
	}
	var s string
	if err := json.Unmarshal(b.Code, &s); err == nil {
		return s
	}
	if b.ErrorCode != "" {
		return b.ErrorCode
	}
	return strings.Trim(string(b.Code), `"`)
}

func (b errorBody) message() string {
	for _, m := range []string{b.Msg, b.Message, b.ErrorDescription, b.ErrorText} {
		if m != "" {
			return m
		}
	}
	return ""
}

// decodeError turns a non-2xx response into a classified service error.
// The backend's message is kept verbatim.
func decodeError(status int, body []byte, auth bool) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.message()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	code := eb.code()
	kind := service.KindBackend
	switch {
	case auth:
		kind = service.KindAuth
	case isMissingTable(code, msg):
		kind = service.KindSetup
	}

	return service.WrapError(kind, msg, &StatusError{Status: status, Code: code})
}

func isMissingTable(code, msg string) bool {
	if code == codeUndefinedTable || code == codeTableNotFound {
		return true
	}
	return missingRelation.MatchString(msg)
}
