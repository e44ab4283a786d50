package core

// loader.go reads one delimited input file into a Table. The loader is
// deliberately forgiving: encoding quirks, delimiter variation and
// ragged rows are absorbed or reported as findings so that partial data
// still reaches the validators. Only conditions that make the whole
// file unusable (empty input, no header, binary content) abort the load.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// LoadError reports an unrecoverable load failure. Anything less severe
// is returned as a Finding instead.
type LoadError struct {
	Role   TableRole
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s table: %s: %v", e.Role, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s table: %s", e.Role, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseDelimiter converts a delimiter name from a flag or form field to
// the rune Load expects. Empty and "auto" mean sniffing.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return 0, nil
	case "comma", ",":
		return ',', nil
	case "semicolon", ";":
		return ';', nil
	case "tab", "\t":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unknown delimiter %q (use auto, comma, semicolon or tab)", s)
	}
}

// SniffDelimiter picks the delimiter from a header line by counting
// candidate characters outside quoted sections. Comma wins ties, which
// also makes it the fallback for single-column files.
func SniffDelimiter(header string) rune {
	counts := map[rune]int{',': 0, ';': 0, '\t': 0}
	inQuotes := false
	for _, r := range header {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if _, ok := counts[r]; ok {
			counts[r]++
		}
	}

	best := ','
	for _, cand := range []rune{';', '\t'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best
}

// decodeInput normalizes raw file bytes to UTF-8. It honors UTF-16
// byte-order marks, strips a UTF-8 BOM, and falls back to Latin-1 for
// byte soups that are not valid UTF-8. NUL bytes after decoding mean
// the input is binary, not text.
func decodeInput(data []byte) ([]byte, error) {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE,
		len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode UTF-16: %w", err)
		}
		data = out
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		data = data[3:]
	}

	if !utf8.Valid(data) {
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode Latin-1: %w", err)
		}
		data = out
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return nil, errors.New("binary content")
	}
	return data, nil
}

// Load reads a delimited byte stream into a Table for the given role.
// delim 0 means sniff from the header line. Structural problems in
// individual rows come back as findings; the error return is non-nil
// only for a *LoadError that aborts the whole run.
func Load(role TableRole, r io.Reader, delim rune) (*Table, []Finding, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, &LoadError{Role: role, Reason: "read input", Err: err}
	}

	data, err := decodeInput(raw)
	if err != nil {
		return nil, nil, &LoadError{Role: role, Reason: "unreadable encoding", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, &LoadError{Role: role, Reason: "empty file"}
	}

	if delim == 0 {
		headerLine := string(data)
		if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
			headerLine = string(data[:i])
		}
		delim = SniffDelimiter(headerLine)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, &LoadError{Role: role, Reason: "no header row", Err: err}
	}

	columns := make([]string, len(header))
	blank := true
	for i, h := range header {
		columns[i] = strings.ToLower(cleanCell(h))
		if columns[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil, nil, &LoadError{Role: role, Reason: "no header row"}
	}

	table := &Table{Role: role, Columns: columns}
	var findings []Finding

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// LazyQuotes absorbs most quoting damage; anything the
			// reader still rejects is reported as a malformed row at
			// the physical line the parser stopped on.
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			findings = append(findings, Finding{
				Severity: SeverityError,
				Table:    role,
				Line:     line,
				Code:     CodeMalformedRow,
				Message:  fmt.Sprintf("row could not be parsed: %v", err),
			})
			table.Excluded++
			continue
		}
		// Physical line of the record's first field, so quoted cells
		// containing newlines do not shift later diagnostics.
		line, _ := reader.FieldPos(0)

		if isEmptyRecord(record) {
			continue
		}

		if len(record) != len(columns) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Table:    role,
				Line:     line,
				Code:     CodeMalformedRow,
				Message: fmt.Sprintf("row has %d fields, header has %d",
					len(record), len(columns)),
			})
			table.Excluded++
			continue
		}

		cells := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			cells[col] = cleanCell(record[i])
		}
		table.Rows = append(table.Rows, Row{Line: line, Cells: cells})
	}

	return table, findings, nil
}

// isEmptyRecord reports whether every field of a record is blank.
func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanCell removes common export artifacts from a header or cell:
// surrounding whitespace, an Excel formula prefix (="value"), and
// stray surrounding quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}
