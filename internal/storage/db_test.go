package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsort/internal"
)

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

func testKey(rack, shelf *int) string {
	if rack == nil && shelf == nil {
		return "Unknown Location"
	}
	return fmt.Sprintf("Rack %v - Shelf %v", rack != nil, shelf != nil)
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "shelfsort.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestReplaceAndListBooks(t *testing.T) {
	db := openTestDB(t)

	books := []internal.Book{
		{
			BookID: "00018", AccNo: "5916", Title: "Operation Research",
			Authors: []string{"Hillier", "Frederick S."}, Publisher: "McGraw-Hill",
			PublishedYear: intp(2008), Department: internal.DeptIT, Status: internal.StatusAvailable,
			Location:   &internal.Location{Rack: intp(1), Shelf: intp(60)},
			CallNumber: strp("1"), Edition: 8, Copies: 1,
		},
		{
			BookID: "00002", Title: "Untitled", Authors: []string{},
			Department: internal.DeptGeneral, Status: internal.StatusIssued,
			Location: &internal.Location{}, Copies: 2,
		},
	}
	require.NoError(t, db.ReplaceBooks(books, testKey))

	got, err := db.ListBooks()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "00002", got[0].BookID)
	assert.Nil(t, got[0].PublishedYear)
	assert.Nil(t, got[0].CallNumber)
	assert.Nil(t, got[0].Edition)
	assert.Nil(t, got[0].Location.Rack)
	assert.Equal(t, []string{}, got[0].Authors)

	assert.Equal(t, books[0], got[1])
}

func TestReplaceBooks_SwapsCatalog(t *testing.T) {
	db := openTestDB(t)

	first := internal.Book{BookID: "b1", Title: "Old", Department: internal.DeptGeneral, Status: internal.StatusAvailable, Copies: 1}
	require.NoError(t, db.ReplaceBooks([]internal.Book{first}, testKey))

	second := first
	second.Title = "New"
	require.NoError(t, db.ReplaceBooks([]internal.Book{second}, testKey))

	n, err := db.CountBooks()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := db.ListBooks()
	require.NoError(t, err)
	assert.Equal(t, "New", got[0].Title)
}

func TestReplaceBooks_KeepsCollidingIDs(t *testing.T) {
	db := openTestDB(t)

	a := internal.Book{BookID: "same", Title: "A", Department: internal.DeptGeneral, Status: internal.StatusAvailable, Copies: 1}
	b := a
	b.Title = "B"
	blank := a
	blank.BookID = ""
	require.NoError(t, db.ReplaceBooks([]internal.Book{a, b, a, blank, blank}, testKey))

	n, err := db.CountBooks()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := db.ListBooks()
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "", got[0].BookID)
	assert.Equal(t, "", got[1].BookID)
	assert.Equal(t, []string{"A", "B", "A"}, []string{got[2].Title, got[3].Title, got[4].Title})
}

func TestRuns(t *testing.T) {
	db := openTestDB(t)

	last, err := db.LastRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	counts := internal.RunCounts{Records: 3, Generated: 1, Locations: 2}
	require.NoError(t, db.InsertRun("trace-1", "run", "books.json", map[string]float64{"totalMs": 4}, counts))

	last, err = db.LastRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "trace-1", last.TraceID)
	assert.Equal(t, "run", last.Command)
	assert.Equal(t, "books.json", last.Source)
	assert.Equal(t, counts, last.Counts)
}
