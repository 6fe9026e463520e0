// Package xlsx reads and writes spreadsheet files for the merge engine.
//
// Reading treats the first row as the header and every cell as text;
// type interpretation happens later, during filtering. Writing produces
// either a plain sheet or an annotated one with unmatched rows
// highlighted.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/xlmerge/pkg/table"
)

// ReadError - a source file could not be parsed as tabular data.
// Aborts the whole operation; names the offending source.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read source %q: %v", e.Source, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ReadFile loads an .xlsx file into a Table. sheetName empty means the
// first sheet.
func ReadFile(path string, sheetName string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Source: path, Err: err}
	}
	defer f.Close()
	return readSheet(f, path, sheetName)
}

// Read loads an .xlsx stream into a Table. name is used for error
// reporting only (e.g. the uploaded file name).
func Read(r io.Reader, name string, sheetName string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ReadError{Source: name, Err: err}
	}
	defer f.Close()
	return readSheet(f, name, sheetName)
}

func readSheet(f *excelize.File, name string, sheetName string) (*table.Table, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &ReadError{Source: name, Err: err}
	}
	if len(rows) == 0 {
		return nil, &ReadError{Source: name, Err: fmt.Errorf("sheet %q has no header row", sheetName)}
	}

	t := table.New(dedupeHeader(rows[0])...)
	for _, dataRow := range rows[1:] {
		t.AppendRow(dataRow)
	}
	return t, nil
}

// dedupeHeader makes header names unique: a repeated name (after
// normalization) gets a _2, _3, ... suffix, the way pandas mangles
// duplicate columns. A suffixed candidate can itself collide with a
// real column ("x", "x", "x_2"), so probing continues until the
// candidate's normalized form is unseen. Keeps column lookup
// unambiguous downstream.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		candidate := name
		for n := 2; ; n++ {
			norm := table.NormalizeName(candidate)
			if _, dup := taken[norm]; !dup {
				taken[norm] = struct{}{}
				break
			}
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		out[i] = candidate
	}
	return out
}
