package dispatch

import "fmt"

// Kind classifies handler-reported failures. The dispatcher maps each kind
// to an HTTP status through a fixed table; unknown errors become opaque
// server errors.
type Kind string

const (
	KindValidation    Kind = "validation_failed"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindForbidden     Kind = "forbidden"
	KindUnauthorized  Kind = "unauthorized"
	KindUnprocessable Kind = "unprocessable"
)

// Failure is the declared error form of the handler contract. Code carries
// the numeric business error codes kept from the v1 API where one exists.
type Failure struct {
	Kind   Kind
	Code   int
	Detail string
}

func (f *Failure) Error() string {
	if f.Code != 0 {
		return fmt.Sprintf("%s (code %d): %s", f.Kind, f.Code, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Validation reports a payload constraint violation.
func Validation(detail string) *Failure {
	return &Failure{Kind: KindValidation, Detail: detail}
}

// NotFound reports a missing resource.
func NotFound(detail string) *Failure {
	return &Failure{Kind: KindNotFound, Detail: detail}
}

// Conflict reports a state conflict, optionally with a business error code.
func Conflict(code int, detail string) *Failure {
	return &Failure{Kind: KindConflict, Code: code, Detail: detail}
}

// Forbidden reports an authorization failure.
func Forbidden(code int, detail string) *Failure {
	return &Failure{Kind: KindForbidden, Code: code, Detail: detail}
}

// Unprocessable reports a semantically invalid request.
func Unprocessable(code int, detail string) *Failure {
	return &Failure{Kind: KindUnprocessable, Code: code, Detail: detail}
}

var statusByKind = map[Kind]int{
	KindValidation:    400,
	KindUnauthorized:  401,
	KindForbidden:     403,
	KindNotFound:      404,
	KindConflict:      409,
	KindUnprocessable: 422,
}
