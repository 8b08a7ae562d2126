package pipeline

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"shelfsort/internal"
)

// Policy is the single table of fallbacks the normalizer applies when a
// value is missing or unrecognized. Strict only adds reporting; records are
// emitted either way.
type Policy struct {
	DefaultDepartment internal.Department
	DefaultStatus     internal.Status
	DefaultCopies     int
	ZeroYearIsUnknown bool
	Strict            bool
}

func DefaultPolicy() Policy {
	return Policy{
		DefaultDepartment: internal.DeptGeneral,
		DefaultStatus:     internal.StatusAvailable,
		DefaultCopies:     1,
		ZeroYearIsUnknown: true,
	}
}

func (p Policy) Department(text string) internal.Department {
	if dept, ok := classifyDepartment(text); ok {
		return dept
	}
	return p.DefaultDepartment
}

func (p Policy) Status(text string) internal.Status {
	if strings.ToLower(strings.TrimSpace(text)) == "issued" {
		return internal.StatusIssued
	}
	return p.DefaultStatus
}

func (p Policy) Copies(n int, ok bool) int {
	if !ok || n < 1 {
		return p.DefaultCopies
	}
	return n
}

func (p Policy) Year(n int, ok bool) *int {
	if !ok || (n == 0 && p.ZeroYearIsUnknown) {
		return nil
	}
	return &n
}

// Violation describes one field of a normalized record that strict mode
// would have rejected.
type Violation struct {
	BookID string
	Field  string
	Rule   string
}

var bookValidator = validator.New()

// Check reports what strict validation thinks of b. It never modifies b.
func (p Policy) Check(b internal.Book) []Violation {
	if !p.Strict {
		return nil
	}
	err := bookValidator.Struct(b)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{BookID: b.BookID, Field: "record", Rule: err.Error()}}
	}
	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Violation{BookID: b.BookID, Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
