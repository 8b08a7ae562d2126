package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsort/internal"
)

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

func rawJSON(t *testing.T, s string) internal.RawRecord {
	t.Helper()
	records, err := DecodeRecords([]byte(s))
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func seqNormalizer() *Normalizer {
	return NewNormalizer(&SequenceIDs{Next: 1}, DefaultPolicy(), nil)
}

func TestParseAuthors(t *testing.T) {
	assert.Equal(t, []string{"Smith", "Jones", "Lee"}, ParseAuthors("Smith, Jones,, Lee"))
	assert.Equal(t, []string{"Hillier", "Frederick S."}, ParseAuthors(" Hillier ,Frederick S. "))
	assert.Equal(t, []string{}, ParseAuthors(""))
	assert.Equal(t, []string{}, ParseAuthors(" , ,"))
}

func TestAuthorsFrom_List(t *testing.T) {
	got := authorsFrom([]any{"Knuth", " ", "Aho, Ullman"})
	assert.Equal(t, []string{"Knuth", "Aho", "Ullman"}, got)
	assert.Equal(t, []string{}, authorsFrom(nil))
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, internal.StatusIssued, NormalizeStatus("ISSUED"))
	assert.Equal(t, internal.StatusIssued, NormalizeStatus("  issued "))
	assert.Equal(t, internal.StatusAvailable, NormalizeStatus(""))
	assert.Equal(t, internal.StatusAvailable, NormalizeStatus("checked out"))
	assert.Equal(t, internal.StatusAvailable, NormalizeStatus("Available"))
	assert.Equal(t, internal.StatusAvailable, NormalizeStatus("issued out"))
}

func TestClean_Scenario(t *testing.T) {
	rec := rawJSON(t, `{"Title": " Data Structures ", "Author": "A, B", "Department": "cse", "Status": "issued", "Location Rack, Shelf": "rack 3 shelf 1", "No. of. Copies": 0}`)

	book := seqNormalizer().Clean(rec)

	assert.Equal(t, "00001", book.BookID)
	assert.Equal(t, "Data Structures", book.Title)
	assert.Equal(t, []string{"A", "B"}, book.Authors)
	assert.Equal(t, internal.DeptComputerScience, book.Department)
	assert.Equal(t, internal.StatusIssued, book.Status)
	require.NotNil(t, book.Location)
	assert.Equal(t, intp(3), book.Location.Rack)
	assert.Equal(t, intp(1), book.Location.Shelf)
	assert.Equal(t, 1, book.Copies)
	assert.Nil(t, book.PublishedYear)
	assert.Nil(t, book.CallNumber)
	assert.Nil(t, book.Edition)

	blob, err := EncodeJSON([]internal.Book{book})
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"bookId": "00001",
		"accNo": "",
		"title": "Data Structures",
		"authors": ["A", "B"],
		"publisher": "",
		"publishedYear": null,
		"department": "COMPUTER SCIENCE",
		"status": "Issued",
		"location": {"rack": 3, "shelf": 1},
		"callNumber": null,
		"edition": null,
		"copies": 1
	}]`, string(blob))
}

func TestClean_FieldOrder(t *testing.T) {
	book := seqNormalizer().Clean(internal.RawRecord{})
	blob, err := json.Marshal(book)
	require.NoError(t, err)

	assert.Equal(t,
		`{"bookId":"00001","accNo":"","title":"","authors":[],"publisher":"","publishedYear":null,"department":"GENERAL","status":"Available","location":{"rack":null,"shelf":null},"callNumber":null,"edition":null,"copies":1}`,
		string(blob))
}

func TestClean_FullRecord(t *testing.T) {
	rec := rawJSON(t, `{
		"Acc no": 5916,
		"Title": "Operation Research Concepts and Cases",
		"Author": "Hillier, Frederick S.",
		"Publisher": " McGraw-Hill ",
		"Published Year": 2008,
		"Department": "Information Technology",
		"Status": "Available",
		"Location Rack, Shelf": "Rack 1, Shelf 60",
		"Call number": 658.4,
		"Edition": 8,
		"No. of. Copies": 3
	}`)

	book := seqNormalizer().Clean(rec)

	assert.Equal(t, "5916", book.AccNo)
	assert.Equal(t, "McGraw-Hill", book.Publisher)
	assert.Equal(t, intp(2008), book.PublishedYear)
	assert.Equal(t, internal.DeptIT, book.Department)
	assert.Equal(t, strp("658.4"), book.CallNumber)
	assert.Equal(t, 8, book.Edition)
	assert.Equal(t, 3, book.Copies)
}

func TestClean_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, b internal.Book)
	}{
		{"year zero is unknown", `{"Published Year": 0}`, func(t *testing.T, b internal.Book) {
			assert.Nil(t, b.PublishedYear)
		}},
		{"year as text", `{"Published Year": "1999"}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, intp(1999), b.PublishedYear)
		}},
		{"year unparseable", `{"Published Year": "n.d."}`, func(t *testing.T, b internal.Book) {
			assert.Nil(t, b.PublishedYear)
		}},
		{"call number zero", `{"Call number": 0}`, func(t *testing.T, b internal.Book) {
			assert.Nil(t, b.CallNumber)
		}},
		{"call number empty", `{"Call number": ""}`, func(t *testing.T, b internal.Book) {
			assert.Nil(t, b.CallNumber)
		}},
		{"call number text", `{"Call number": "QA76.73"}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, strp("QA76.73"), b.CallNumber)
		}},
		{"edition text", `{"Edition": "2nd"}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, "2nd", b.Edition)
		}},
		{"edition falsy", `{"Edition": ""}`, func(t *testing.T, b internal.Book) {
			assert.Nil(t, b.Edition)
		}},
		{"copies null", `{"No. of. Copies": null}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, 1, b.Copies)
		}},
		{"copies negative", `{"No. of. Copies": -3}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, 1, b.Copies)
		}},
		{"copies text", `{"No. of. Copies": "2 Nos"}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, 2, b.Copies)
		}},
		{"null title", `{"Title": null}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, "", b.Title)
		}},
		{"numeric department", `{"Department": 42}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, internal.DeptGeneral, b.Department)
		}},
		{"status not a string", `{"Status": true}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, internal.StatusAvailable, b.Status)
		}},
		{"location not text", `{"Location Rack, Shelf": 12}`, func(t *testing.T, b internal.Book) {
			assert.Nil(t, b.Location.Rack)
			assert.Nil(t, b.Location.Shelf)
		}},
		{"authors missing", `{}`, func(t *testing.T, b internal.Book) {
			assert.Equal(t, []string{}, b.Authors)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, seqNormalizer().Clean(rawJSON(t, tt.input)))
		})
	}
}

func TestIngest_BookIDAliases(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		generated bool
	}{
		{"canonical", `{"bookId": "00018"}`, "00018", false},
		{"upper variant", `{"BOOK_Id": "B-1"}`, "B-1", false},
		{"snake variant", `{"Book_ID": " B-2 "}`, "B-2", false},
		{"spaced variant", `{"Book Id": 77}`, "77", false},
		{"canonical wins", `{"Book_ID": "later", "bookId": "first"}`, "first", false},
		{"blank skipped", `{"bookId": "  ", "Book Id": "B-3"}`, "B-3", false},
		{"mongo oid", `{"_id": {"$oid": "699bd8b4de7f9b7ada8236d9"}}`, "699bd8b4de7f9b7ada8236d9", false},
		{"missing", `{"Title": "x"}`, "00001", true},
		{"null", `{"bookId": null}`, "00001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := seqNormalizer().Ingest(rawJSON(t, tt.input))
			assert.Equal(t, tt.want, in.BookID)
			assert.Equal(t, tt.generated, in.GeneratedID)
		})
	}
}

func TestResolve_Precedence(t *testing.T) {
	fields := Resolve(internal.RawRecord{
		"Title":                "Legacy",
		"title":                "Canonical",
		"Location":             "rack 9",
		"Location Rack, Shelf": "rack 1 shelf 2",
		"Acc no":               nil,
		"AccNo":                "A-1",
	})

	assert.Equal(t, "Canonical", fields[FieldTitle])
	assert.Equal(t, "rack 1 shelf 2", fields[FieldLocation])
	assert.Equal(t, "A-1", fields[FieldAccNo])
	_, ok := fields[FieldPublisher]
	assert.False(t, ok)
}

func TestClean_Idempotent(t *testing.T) {
	raw, err := DecodeRecords([]byte(`[
		{"Book_ID": "B1", "Acc no": 12, "Title": "  Signals ", "Author": "Oppenheim,, Willsky", "Department": "ece",
		 "Status": "ISSUED", "Location Rack, Shelf": "Rack 2\tShelf 5", "Call number": 621.3, "Edition": 2, "No. of. Copies": 4,
		 "Published Year": 1997},
		{"Title": "No location", "Department": "Library Science", "Edition": "3rd", "Published Year": 0},
		{"Title": "Half", "Location Rack, Shelf": "shelf 8", "Publisher": "Pearson"}
	]`))
	require.NoError(t, err)

	first, _ := seqNormalizer().CleanAll(raw)

	blob, err := json.Marshal(first)
	require.NoError(t, err)
	again, err := DecodeRecords(blob)
	require.NoError(t, err)

	// Ids are present on the second pass, so a random source must never be hit.
	second, stats := NewNormalizer(RandomIDs{}, DefaultPolicy(), nil).CleanAll(again)

	assert.Equal(t, 0, stats.Generated)
	assert.Equal(t, first, second)
}

func TestCleanAll_Stats(t *testing.T) {
	raw := []internal.RawRecord{
		{"bookId": "x"},
		{"Title": "a"},
		{"Title": "b"},
	}

	books, stats := seqNormalizer().CleanAll(raw)

	require.Len(t, books, 3)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 2, stats.Generated)
	assert.Equal(t, "x", books[0].BookID)
	assert.Equal(t, "00001", books[1].BookID)
	assert.Equal(t, "00002", books[2].BookID)
}

func TestCleanAll_StrictReportsButKeeps(t *testing.T) {
	p := DefaultPolicy()
	p.Strict = true
	n := NewNormalizer(&SequenceIDs{Next: 1}, p, nil)

	books, stats := n.CleanAll([]internal.RawRecord{
		{"Title": "Complete", "Author": "Someone", "Published Year": json.Number("2001")},
		{"Published Year": json.Number("12")},
	})

	require.Len(t, books, 2)
	assert.Equal(t, 1, stats.Flagged)

	violations := p.Check(books[1])
	fields := map[string]bool{}
	for _, v := range violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["Title"])
	assert.True(t, fields["Authors"])
	assert.True(t, fields["PublishedYear"])
}

func TestPolicy_CheckOffByDefault(t *testing.T) {
	assert.Nil(t, DefaultPolicy().Check(internal.Book{}))
}
