package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV reads a supplier CSV export with headerRow (1-based), auto-detecting encoding and
// converting to UTF-8. Handles UTF-8, Windows-1251 and the Latin-1 family (Excel on Windows).
func readCSV(r io.Reader, headerRow int) ([]map[string]string, error) {
	br := bufio.NewReader(r)

	// Peek a bit to detect encoding and delimiter
	peek, _ := br.Peek(4096)

	var dec io.Reader = br
	if enc := detectEncoding(peek); enc != nil {
		dec = transform.NewReader(br, enc.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}

// detectEncoding returns nil for UTF-8 (or anything we pass through unchanged).
func detectEncoding(peek []byte) encoding.Encoding {
	if len(peek) == 0 || validUTF8Prefix(peek) {
		return nil
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return nil
	}
	switch strings.ToLower(det.Charset) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "windows-1252":
		return charmap.Windows1252
	case "iso-8859-1":
		return charmap.ISO8859_1
	default:
		// assume UTF-8
		return nil
	}
}

// chardet guesses Latin-1 on short UTF-8 samples, so valid UTF-8 wins outright.
// Peek can cut the last rune in half.
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b) && len(b) > 0
}

// sniffDelimiter picks ';' for European Excel exports, '\t' for TSV, ',' otherwise.
// Counts over the whole sample: some price lists open with a title line.
func sniffDelimiter(peek []byte) rune {
	sample := string(peek)
	best, bestN := ',', strings.Count(sample, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(sample, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
