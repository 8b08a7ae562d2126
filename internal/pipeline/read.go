package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"shelfsort/internal"
	apperrors "shelfsort/internal/errors"
	"shelfsort/internal/util"
)

// DetectFormat honours an explicit --type, otherwise goes by extension.
func DetectFormat(path, explicit string) (internal.SourceFormat, error) {
	name := strings.ToLower(strings.TrimSpace(explicit))
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch name {
	case "json":
		return internal.SourceJSON, nil
	case "xlsx":
		return internal.SourceXLSX, nil
	case "html", "htm":
		return internal.SourceHTML, nil
	default:
		return "", apperrors.UnsupportedFormat(name)
	}
}

// ReadRecords loads raw catalog rows from path.
func ReadRecords(path string, format internal.SourceFormat) ([]internal.RawRecord, error) {
	blob, err := readSource(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case internal.SourceJSON:
		records, err := DecodeRecords(blob)
		if err != nil {
			return nil, apperrors.MalformedSource(path, err)
		}
		return records, nil
	case internal.SourceXLSX:
		records, err := parseXLSX(blob)
		if err != nil {
			return nil, apperrors.MalformedSource(path, err)
		}
		return records, nil
	case internal.SourceHTML:
		return readHTML(path, bytes.NewReader(blob))
	default:
		return nil, apperrors.UnsupportedFormat(string(format))
	}
}

// ReadBooks loads already normalized (or normalized-looking) records for
// grouping and export. Values are taken as they are, not re-normalized.
func ReadBooks(path string) ([]internal.Book, error) {
	blob, err := readSource(path)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(blob)
	if err != nil {
		return nil, apperrors.MalformedSource(path, err)
	}
	out := make([]internal.Book, 0, len(records))
	for _, rec := range records {
		out = append(out, BookFromRecord(rec))
	}
	return out, nil
}

func readSource(path string) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.SourceNotFound(path, err)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Sprintf("read %s", path), err)
	}
	return blob, nil
}

// DecodeRecords accepts a JSON array of objects or a single object.
func DecodeRecords(data []byte) ([]internal.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(util.StripBOM(data)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}

	switch v := doc.(type) {
	case map[string]any:
		return []internal.RawRecord{v}, nil
	case []any:
		out := make([]internal.RawRecord, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is not an object", i)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, errors.New("expected a JSON array or object")
	}
}

// BookFromRecord reads a normalized-shaped record without applying any
// normalization rules. Unknown shapes become zero values.
func BookFromRecord(rec internal.RawRecord) internal.Book {
	b := internal.Book{
		BookID:     util.Text(rec["bookId"]),
		AccNo:      util.Text(rec["accNo"]),
		Title:      util.Text(rec["title"]),
		Publisher:  util.Text(rec["publisher"]),
		Department: internal.Department(util.Text(rec["department"])),
		Status:     internal.Status(util.Text(rec["status"])),
	}
	if list, ok := rec["authors"].([]any); ok {
		b.Authors = make([]string, 0, len(list))
		for _, a := range list {
			b.Authors = append(b.Authors, util.Text(a))
		}
	}
	if n, ok := util.Int(rec["publishedYear"]); ok {
		b.PublishedYear = &n
	}
	if m, ok := rec["location"].(map[string]any); ok {
		b.Location = &internal.Location{Rack: coordinate(m["rack"]), Shelf: coordinate(m["shelf"])}
	}
	if v, ok := rec["callNumber"]; ok && v != nil {
		b.CallNumber = util.StringPtr(util.Text(v))
	}
	b.Edition = util.Number(rec["edition"])
	if n, ok := util.Int(rec["copies"]); ok {
		b.Copies = n
	}
	return b
}

// parseXLSX reads the first sheet only. Later sheets hold notes or
// summaries, such as the Locations sheet written by export:xlsx.
func parseXLSX(content []byte) ([]internal.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []internal.RawRecord{}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return out, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var headers []string
	for _, row := range rows {
		cells := normalizeCells(row)
		if isBlankRow(cells) {
			continue
		}
		if headers == nil {
			headers = cells
			continue
		}
		out = append(out, rowToRecord(headers, cells))
	}
	return out, nil
}

func readHTML(path string, r io.Reader) ([]internal.RawRecord, error) {
	records, err := parseHTMLTables(r)
	if err != nil {
		return nil, apperrors.MalformedSource(path, err)
	}
	return records, nil
}

func parseHTMLTables(r io.Reader) ([]internal.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := []internal.RawRecord{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, util.NormalizeSpaces(cell.Text()))
		})

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			if isBlankRow(cells) {
				return
			}
			out = append(out, rowToRecord(headers, cells))
		})
	})
	return out, nil
}

// rowToRecord keys cells by header. Empty cells and unnamed columns are
// left out so they read as missing.
func rowToRecord(headers, cells []string) internal.RawRecord {
	rec := internal.RawRecord{}
	for i, h := range headers {
		if h == "" || i >= len(cells) || cells[i] == "" {
			continue
		}
		if _, dup := rec[h]; dup {
			continue
		}
		rec[h] = cells[i]
	}
	return rec
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
