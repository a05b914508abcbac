package iotable

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gnames/gnlib"
	"golang.org/x/text/encoding/charmap"

	"github.com/gnames/gnstar/pkg/table"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// naValues are read as nulls.
var naValues = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "#N/A": {}, "NaN": {}, "nan": {},
	"null": {}, "NULL": {}, "None": {},
}

func writeCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = table.FormatValue(v)
		}
		if err = w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func readCSV(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = decodeText(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return table.New(""), nil
	}

	header := recs[0]
	for i := range header {
		header[i] = gnlib.FixUtf8(header[i])
	}
	res := table.New("", header...)
	width := len(header)

	raw := make([][]string, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		row := make([]string, width)
		copy(row, rec)
		raw = append(raw, row)
	}

	res.Rows = make([][]any, len(raw))
	for i := range res.Rows {
		res.Rows[i] = make([]any, width)
	}
	for j := range width {
		conv := inferColumn(raw, j)
		for i, row := range raw {
			res.Rows[i][j] = conv(row[j])
		}
	}
	return res, nil
}

// decodeText strips a UTF-8 byte order mark and decodes files that are
// not valid UTF-8 as ISO-8859-1.
func decodeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	dec, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return dec
}

// sniffDelimiter picks semicolon or tab when the header line has them
// and no comma.
func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.IndexByte(line, ',') >= 0 {
		return ','
	}
	switch {
	case bytes.IndexByte(line, ';') >= 0:
		return ';'
	case bytes.IndexByte(line, '\t') >= 0:
		return '\t'
	}
	return ','
}

func isNA(s string) bool {
	_, ok := naValues[strings.TrimSpace(s)]
	return ok
}

// inferColumn returns a converter for column j: int64 when every value is
// an integer, then float64, then bool, and string otherwise.
func inferColumn(rows [][]string, j int) func(string) any {
	isInt, isFloat, isBool := true, true, true
	var seen bool
	for _, row := range rows {
		s := strings.TrimSpace(row[j])
		if isNA(s) {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			l := strings.ToLower(s)
			isBool = l == "true" || l == "false"
		}
		if !isInt && !isFloat && !isBool {
			break
		}
	}

	na := func(s string) bool { return isNA(s) }
	switch {
	case !seen:
		return func(string) any { return nil }
	case isInt:
		return func(s string) any {
			if na(s) {
				return nil
			}
			i, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			return i
		}
	case isFloat:
		return func(s string) any {
			if na(s) {
				return nil
			}
			f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			return f
		}
	case isBool:
		return func(s string) any {
			if na(s) {
				return nil
			}
			return strings.EqualFold(strings.TrimSpace(s), "true")
		}
	default:
		return func(s string) any {
			if na(s) {
				return nil
			}
			return gnlib.FixUtf8(s)
		}
	}
}
