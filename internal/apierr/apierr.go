// Package apierr defines the verdict service's error taxonomy and maps it
// onto HTTP status codes, per the error handling design: client errors
// (400), budget errors (429), upstream errors (500), and internal errors
// (500, logged-and-swallowed where cache-related).
package apierr

import "fmt"

// Class groups an error kind into its HTTP status family.
type Class int

const (
	ClassClient Class = iota
	ClassBudget
	ClassUpstream
	ClassInternal
)

// Kind enumerates the named error conditions the spec calls out.
type Kind string

const (
	InvalidURL               Kind = "InvalidUrl"
	UnextractableID          Kind = "UnextractableId"
	EmptyRequestBody         Kind = "EmptyRequestBody"
	BudgetExhausted          Kind = "BudgetExhausted"
	PerClientBudgetExhausted Kind = "PerClientBudgetExhausted"
	MetadataUnavailable      Kind = "MetadataUnavailable"
	VideoNotFound            Kind = "VideoNotFound"
	ImageFetchFailed         Kind = "ImageFetchFailed"
	ClassifierUnavailable    Kind = "ClassifierUnavailable"
	ClassifierUnparseable    Kind = "ClassifierUnparseable"
	ClassifierRejected       Kind = "ClassifierRejected"
	PermissionDenied         Kind = "PermissionDenied"
	CacheBackendError        Kind = "CacheBackendError"
	Internal                 Kind = "Internal"
)

var classOf = map[Kind]Class{
	InvalidURL:               ClassClient,
	UnextractableID:          ClassClient,
	EmptyRequestBody:         ClassClient,
	BudgetExhausted:          ClassBudget,
	PerClientBudgetExhausted: ClassBudget,
	MetadataUnavailable:      ClassUpstream,
	VideoNotFound:            ClassUpstream,
	ImageFetchFailed:         ClassUpstream,
	ClassifierUnavailable:    ClassUpstream,
	ClassifierUnparseable:    ClassUpstream,
	ClassifierRejected:       ClassUpstream,
	PermissionDenied:         ClassUpstream,
	CacheBackendError:        ClassInternal,
	Internal:                 ClassInternal,
}

// Error is the typed error carried through the service. Detail is a terse,
// user-safe message: it never leaks secrets or internal identifiers beyond
// the VideoId.
type Error struct {
	Kind   Kind
	Detail string
	Budget *BudgetInfo // set only for BudgetExhausted / PerClientBudgetExhausted
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Class reports which HTTP status family this error belongs to.
func (e *Error) Class() Class {
	if c, ok := classOf[e.Kind]; ok {
		return c
	}
	return ClassInternal
}

// New constructs an Error of the given kind with a detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// BudgetInfo carries the extra fields the 429 response must include: the
// configured limit, today's count against it, and a human-readable note
// that cached videos don't consume budget.
type BudgetInfo struct {
	Limit        int
	CountToday   int
	HumanMessage string
}

// NewBudgetExhausted builds a BudgetExhausted error carrying the limit and
// today's count, so the HTTP layer can populate the 429 body's
// limit/count_today fields without re-deriving them.
func NewBudgetExhausted(detail string, limit, countToday int) *Error {
	return &Error{
		Kind:   BudgetExhausted,
		Detail: detail,
		Budget: &BudgetInfo{
			Limit:        limit,
			CountToday:   countToday,
			HumanMessage: "cached videos do not count against the daily analysis budget",
		},
	}
}

// NewPerClientBudgetExhausted builds a PerClientBudgetExhausted error
// carrying the calling client's limit and today's count, for the same 429
// body shape as NewBudgetExhausted.
func NewPerClientBudgetExhausted(detail string, limit, countToday int) *Error {
	return &Error{
		Kind:   PerClientBudgetExhausted,
		Detail: detail,
		Budget: &BudgetInfo{
			Limit:        limit,
			CountToday:   countToday,
			HumanMessage: "cached videos do not count against the daily analysis budget",
		},
	}
}
