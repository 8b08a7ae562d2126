package pipeline

import (
	"strings"

	"shelfsort/internal"
	"shelfsort/internal/util"
)

// Field is a logical catalog attribute, independent of how any export
// spelled its column.
type Field string

const (
	FieldBookID        Field = "bookId"
	FieldAccNo         Field = "accNo"
	FieldTitle         Field = "title"
	FieldAuthors       Field = "authors"
	FieldPublisher     Field = "publisher"
	FieldPublishedYear Field = "publishedYear"
	FieldDepartment    Field = "department"
	FieldStatus        Field = "status"
	FieldLocation      Field = "location"
	FieldCallNumber    Field = "callNumber"
	FieldEdition       Field = "edition"
	FieldCopies        Field = "copies"
)

// FieldAliases lists the accepted column names per field in precedence
// order. The canonical name always comes first so normalized output can be
// fed back in unchanged.
var FieldAliases = []struct {
	Field   Field
	Aliases []string
}{
	{FieldBookID, []string{"bookId", "BookId", "BOOK_Id", "Book_ID", "Book Id", "BOOK ID", "book_id", "_id"}},
	{FieldAccNo, []string{"accNo", "Acc no", "Acc No", "ACC NO", "AccNo", "acc_no"}},
	{FieldTitle, []string{"title", "Title", "TITLE"}},
	{FieldAuthors, []string{"authors", "author", "Author", "Authors", "AUTHOR"}},
	{FieldPublisher, []string{"publisher", "Publisher", "PUBLISHER"}},
	{FieldPublishedYear, []string{"publishedYear", "Published Year", "PublishedYear", "Year"}},
	{FieldDepartment, []string{"department", "Department", "DEPARTMENT", "Dept"}},
	{FieldStatus, []string{"status", "Status", "STATUS"}},
	{FieldLocation, []string{"location", "Location Rack, Shelf", "Location", "locationRack"}},
	{FieldCallNumber, []string{"callNumber", "Call number", "Call Number", "CallNumber"}},
	{FieldEdition, []string{"edition", "Edition"}},
	{FieldCopies, []string{"copies", "No. of. Copies", "numberOfCopies", "No. of Copies", "Copies"}},
}

// Resolved holds one value per logical field. Missing fields have no key.
type Resolved map[Field]any

// Resolve picks, for every field, the first alias present with a non-null
// value. Book ids additionally need non-blank text; Mongo's {"$oid": ...}
// wrapper is unwrapped.
func Resolve(rec internal.RawRecord) Resolved {
	out := make(Resolved, len(FieldAliases))
	for _, entry := range FieldAliases {
		for _, alias := range entry.Aliases {
			v, ok := rec[alias]
			if !ok || v == nil {
				continue
			}
			if entry.Field == FieldBookID {
				id := bookIDText(v)
				if id == "" {
					continue
				}
				v = id
			}
			out[entry.Field] = v
			break
		}
	}
	return out
}

func bookIDText(v any) string {
	if m, ok := v.(map[string]any); ok {
		v = m["$oid"]
	}
	return strings.TrimSpace(util.Text(v))
}
