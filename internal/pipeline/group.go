package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"shelfsort/internal"
)

const UnknownLocation = "Unknown Location"

// LocationKey labels a (rack, shelf) pair. Only a fully missing location
// is unknown; a single missing coordinate renders as "None".
func LocationKey(rack, shelf *int) string {
	if rack == nil && shelf == nil {
		return UnknownLocation
	}
	return fmt.Sprintf("Rack %s - Shelf %s", coordText(rack), coordText(shelf))
}

func coordText(v *int) string {
	if v == nil {
		return "None"
	}
	return strconv.Itoa(*v)
}

func Summarize(b internal.Book) internal.Summary {
	s := internal.Summary{
		BookID:     b.BookID,
		Title:      b.Title,
		Authors:    b.Authors,
		Department: b.Department,
		Status:     b.Status,
	}
	if b.Location != nil {
		s.Rack = b.Location.Rack
		s.Shelf = b.Location.Shelf
	}
	return s
}

// Group partitions books by location key. Nothing is dropped or merged,
// even when book ids collide.
func Group(books []internal.Book) map[string][]internal.Summary {
	groups := make(map[string][]internal.Summary)
	for _, b := range books {
		s := Summarize(b)
		key := LocationKey(s.Rack, s.Shelf)
		groups[key] = append(groups[key], s)
	}
	return groups
}

// Report is the grouped output, keys ascending, books ascending by id.
type Report []internal.LocationGroup

// Emit orders the groups. Books sharing an id fall back to the remaining
// summary fields so the result depends only on the input multiset.
func Emit(groups map[string][]internal.Summary) Report {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Report, 0, len(keys))
	for _, k := range keys {
		books := append([]internal.Summary(nil), groups[k]...)
		sort.SliceStable(books, func(i, j int) bool {
			return summaryLess(books[i], books[j])
		})
		out = append(out, internal.LocationGroup{Key: k, Books: books})
	}
	return out
}

func summaryLess(a, b internal.Summary) bool {
	if a.BookID != b.BookID {
		return a.BookID < b.BookID
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	if a.Department != b.Department {
		return a.Department < b.Department
	}
	if a.Status != b.Status {
		return a.Status < b.Status
	}
	aa, ba := strings.Join(a.Authors, "\x00"), strings.Join(b.Authors, "\x00")
	if aa != ba {
		return aa < ba
	}
	if c := compareCoord(a.Rack, b.Rack); c != 0 {
		return c < 0
	}
	return compareCoord(a.Shelf, b.Shelf) < 0
}

func compareCoord(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func GroupAndEmit(books []internal.Book) Report {
	return Emit(Group(books))
}

// MarshalJSON writes the report as a JSON object with keys in report order.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		books := g.Books
		if books == nil {
			books = []internal.Summary{}
		}
		if err := encodeCompact(&buf, g.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeCompact(&buf, books); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeCompact(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode always terminates with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (r Report) Flatten() []internal.Summary {
	var out []internal.Summary
	for _, g := range r {
		out = append(out, g.Books...)
	}
	return out
}

type ReportStats struct {
	Locations int
	Books     int
	Unknown   int
}

func (r Report) Stats() ReportStats {
	st := ReportStats{Locations: len(r)}
	for _, g := range r {
		st.Books += len(g.Books)
		if g.Key == UnknownLocation {
			st.Unknown += len(g.Books)
		}
	}
	return st
}
