package supabase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrorClass tells the sync engine how to react to a failed remote call.
type ErrorClass int

const (
	// ClassOther covers failures that are neither transient nor a contract problem.
	ClassOther ErrorClass = iota

	// ClassTransient failures (network down, timeouts, 5xx) may succeed on the next
	// natural trigger.
	ClassTransient

	// ClassAuth failures mean the session is expired or revoked.
	ClassAuth

	// ClassSchemaMismatch means the remote table does not accept the payload shape.
	// Remote sync is disabled for the rest of the session when this is seen.
	ClassSchemaMismatch
)

func (c ErrorClass) String() string {
	switch c {
	case ClassOther:
		return "other"
	case ClassTransient:
		return "transient"
	case ClassAuth:
		return "auth"
	case ClassSchemaMismatch:
		return "schema_mismatch"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// RemoteError wraps a failed PostgREST call with its classification.
type RemoteError struct {
	Class  ErrorClass
	Table  string
	Op     string
	Code   string // PostgREST / Postgres error code, when the server sent one
	Status int    // HTTP status, when known
	Err    error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", e.Class, e.Op, e.Table)
	if e.Status > 0 {
		fmt.Fprintf(&b, " HTTP %d", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Classify returns the class of err. Errors that are not RemoteErrors are classified
// from their shape.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Class
	}
	return classifyCause(err)
}

// IsSchemaMismatch reports whether err means the remote schema rejects our payloads.
func IsSchemaMismatch(err error) bool {
	return err != nil && Classify(err) == ClassSchemaMismatch
}

// postgrest-go reports server errors as "(CODE) message".
var codePattern = regexp.MustCompile(`^\(([A-Z0-9]*)\)\s*(.*)$`)

var schemaCodes = map[string]bool{
	"PGRST204": true, // column not found in schema cache
	"PGRST200": true, // relationship not found
	"PGRST202": true, // function not found
	"PGRST205": true, // table not found
	"42703":    true, // undefined column
	"42P01":    true, // undefined table
	"22P02":    true, // invalid text representation
	"23502":    true, // not null violation
}

var authCodes = map[string]bool{
	"PGRST301": true, // JWT invalid or expired
	"PGRST302": true, // anonymous access disabled
	"42501":    true, // insufficient privilege (row level security)
}

// wrapError builds a RemoteError for a failed call on table. The HTTP status comes from
// the error text when the client put it there, otherwise from the PostgREST code. Codes we
// do not know are classified by that status.
func wrapError(table, op string, err error) error {
	if err == nil {
		return nil
	}
	re := &RemoteError{Table: table, Op: op, Err: err, Status: statusOf(err)}
	if m := codePattern.FindStringSubmatch(err.Error()); m != nil {
		re.Code = m[1]
		if re.Status == 0 {
			re.Status = codeStatus(m[1])
		}
		re.Class = classifyCode(m[1], m[2])
	} else {
		re.Class = classifyCause(err)
	}
	if re.Class == ClassOther && re.Status > 0 {
		re.Class = ClassifyStatus(re.Status)
	}
	return re
}

// gotrue-go reports failed calls as "response status code NNN: body".
var statusPattern = regexp.MustCompile(`status code (\d{3})\b`)

func statusOf(err error) int {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	status, _ := strconv.Atoi(m[1])
	return status
}

// codeStatus is the status PostgREST answers with for code, or 0 when it depends on more
// than the code.
func codeStatus(code string) int {
	switch {
	case code == "PGRST003":
		return 504
	case strings.HasPrefix(code, "PGRST0"):
		return 503
	case code == "PGRST103":
		return 416
	case code == "PGRST105":
		return 405
	case code == "PGRST106":
		return 406
	case code == "PGRST107":
		return 415
	case strings.HasPrefix(code, "PGRST1"):
		return 400
	case code == "PGRST205", code == "PGRST202", code == "42P01", code == "42883":
		return 404
	case strings.HasPrefix(code, "PGRST2"):
		return 400
	case code == "PGRST301", code == "PGRST302":
		return 401
	case code == "42501":
		return 403
	case code == "23503", code == "23505":
		return 409
	default:
		return 0
	}
}

func classifyCode(code, message string) ErrorClass {
	switch {
	case schemaCodes[code]:
		return ClassSchemaMismatch
	case authCodes[code]:
		return ClassAuth
	case strings.Contains(strings.ToLower(message), "jwt expired"):
		return ClassAuth
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"), strings.HasPrefix(code, "57"):
		// connection exceptions, insufficient resources, operator intervention
		return ClassTransient
	default:
		return ClassOther
	}
}

// ClassifyStatus maps an HTTP status to an error class.
func ClassifyStatus(status int) ErrorClass {
	switch {
	case status == 400:
		return ClassSchemaMismatch
	case status == 401 || status == 403:
		return ClassAuth
	case status == 408 || status == 429:
		return ClassTransient
	case status >= 500 && status < 600:
		return ClassTransient
	default:
		return ClassOther
	}
}

func classifyCause(err error) ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassTransient
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassTransient
	}
	if status := statusOf(err); status > 0 {
		return ClassifyStatus(status)
	}
	return ClassOther
}
