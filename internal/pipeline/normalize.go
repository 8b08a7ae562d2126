package pipeline

import (
	"strings"

	"shelfsort/internal"
	"shelfsort/internal/logger"
	"shelfsort/internal/util"
)

// ParseAuthors splits a comma separated author string, dropping blanks.
func ParseAuthors(text string) []string {
	out := []string{}
	for _, part := range strings.Split(text, ",") {
		if a := strings.TrimSpace(part); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func authorsFrom(v any) []string {
	switch x := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := []string{}
		for _, item := range x {
			out = append(out, ParseAuthors(util.Text(item))...)
		}
		return out
	case []string:
		return ParseAuthors(strings.Join(x, ","))
	default:
		return ParseAuthors(util.Text(x))
	}
}

// NormalizeStatus returns Issued for "issued" in any case, Available for
// everything else.
func NormalizeStatus(text string) internal.Status {
	return DefaultPolicy().Status(text)
}

// Ingested is a raw record after alias resolution and id assignment.
type Ingested struct {
	Fields      Resolved
	BookID      string
	GeneratedID bool
}

type CleanStats struct {
	Records   int
	Generated int
	Flagged   int
}

type Normalizer struct {
	ids    IDSource
	policy Policy
	log    *logger.Logger
}

func NewNormalizer(ids IDSource, policy Policy, log *logger.Logger) *Normalizer {
	if ids == nil {
		ids = RandomIDs{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Normalizer{ids: ids, policy: policy, log: log}
}

// Ingest resolves field aliases and settles the record's book id.
func (n *Normalizer) Ingest(rec internal.RawRecord) Ingested {
	fields := Resolve(rec)
	if id, ok := fields[FieldBookID].(string); ok && id != "" {
		return Ingested{Fields: fields, BookID: id}
	}
	return Ingested{Fields: fields, BookID: n.ids.NextID(rec), GeneratedID: true}
}

func (n *Normalizer) Clean(rec internal.RawRecord) internal.Book {
	return CleanIngested(n.Ingest(rec), n.policy)
}

// CleanAll normalizes every record in order. Under a strict policy
// violations are logged, never dropped.
func (n *Normalizer) CleanAll(records []internal.RawRecord) ([]internal.Book, CleanStats) {
	out := make([]internal.Book, 0, len(records))
	stats := CleanStats{Records: len(records)}
	for i, rec := range records {
		in := n.Ingest(rec)
		if in.GeneratedID {
			stats.Generated++
		}
		book := CleanIngested(in, n.policy)
		if violations := n.policy.Check(book); len(violations) > 0 {
			stats.Flagged++
			for _, v := range violations {
				n.log.Warn("record failed strict check", "index", i, "bookId", v.BookID, "field", v.Field, "rule", v.Rule)
			}
		}
		out = append(out, book)
	}
	return out, stats
}

// CleanIngested builds the normalized record. It has no failure path:
// every field falls back to the policy default.
func CleanIngested(in Ingested, p Policy) internal.Book {
	f := in.Fields

	book := internal.Book{
		BookID:     in.BookID,
		AccNo:      util.TrimmedText(f[FieldAccNo]),
		Title:      util.TrimmedText(f[FieldTitle]),
		Authors:    authorsFrom(f[FieldAuthors]),
		Publisher:  util.TrimmedText(f[FieldPublisher]),
		Department: p.Department(util.Text(f[FieldDepartment])),
		Status:     p.Status(util.Text(f[FieldStatus])),
	}

	year, ok := util.Int(f[FieldPublishedYear])
	book.PublishedYear = p.Year(year, ok)

	loc := locationFrom(f[FieldLocation])
	book.Location = &loc

	if v := f[FieldCallNumber]; util.Truthy(v) {
		book.CallNumber = util.StringPtr(util.Text(v))
	}
	if v := f[FieldEdition]; util.Truthy(v) {
		book.Edition = util.Number(v)
	}

	copies := f[FieldCopies]
	n, ok := util.Int(copies)
	book.Copies = p.Copies(n, ok && util.Truthy(copies))

	return book
}
