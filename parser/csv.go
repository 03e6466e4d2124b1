package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"intcomex-sync/internal/types"
)

// headerScanLimit bounds how far into a file the header row is searched for.
// The exporter prepends at most a couple of metadata lines.
const headerScanLimit = 20

// Catalog is the parsed content of one raw export file.
type Catalog struct {
	Encoding string
	// HeaderOffset is the 0-based line index where column names were found.
	HeaderOffset int
	Fields       FieldMap
	Rows         []types.ProductRow
	// Skipped counts malformed data lines dropped during parsing.
	Skipped int
}

// Parse decodes a raw catalog export and yields its product rows. It fails
// only when no header row can be located or when neither the SKU nor the
// price column resolves; malformed data lines are skipped and counted, never
// fatal.
func Parse(data []byte) (*Catalog, error) {
	text, encName, err := decodeExport(data)
	if err != nil {
		return nil, err
	}

	lines := splitLines(text)

	headerIdx := findHeader(lines)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row found in first %d lines", headerScanLimit)
	}

	header := strings.Split(lines[headerIdx], "\t")
	fields := resolveFields(header)
	if _, ok := fields[FieldSKU]; !ok {
		return nil, fmt.Errorf("required column not resolved: sku (header: %q)", lines[headerIdx])
	}
	if _, ok := fields[FieldPrice]; !ok {
		return nil, fmt.Errorf("required column not resolved: price (header: %q)", lines[headerIdx])
	}

	catalog := &Catalog{
		Encoding:     encName,
		HeaderOffset: headerIdx,
		Fields:       fields,
	}

	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		if len(cells) > len(header) {
			catalog.Skipped++
			continue
		}
		catalog.Rows = append(catalog.Rows, types.ProductRow{
			SKU:         fields.value(FieldSKU, cells),
			Name:        fields.value(FieldName, cells),
			PriceText:   fields.value(FieldPrice, cells),
			StockText:   fields.value(FieldStock, cells),
			Attributes:  fields.value(FieldAttributes, cells),
			Category:    fields.value(FieldCategory, cells),
			Subcategory: fields.value(FieldSubcategory, cells),
		})
	}

	return catalog, nil
}

// decodeExport tries the exporter's known encodings in order until one
// decodes cleanly: UTF-16 (both endiannesses), UTF-8, Windows-1252, and
// finally ISO-8859-1, which accepts any byte sequence.
func decodeExport(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("empty export file")
	}

	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeWith(data, "utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeWith(data, "utf-16be", unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM))
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), "utf-8", nil
	}

	// BOM-less UTF-16 shows up as a NUL byte in nearly every other position.
	if looksUTF16(data) {
		return decodeWith(data, "utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	}

	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}

	if text, name, err := decodeWith(data, "windows-1252", charmap.Windows1252); err == nil && !strings.ContainsRune(text, utf8.RuneError) {
		return text, name, nil
	}

	return decodeWith(data, "iso-8859-1", charmap.ISO8859_1)
}

func decodeWith(data []byte, name string, enc encoding.Encoding) (string, string, error) {
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("decode as %s: %w", name, err)
	}
	return string(decoded), name, nil
}

// looksUTF16 reports whether a BOM-less byte stream is plausibly UTF-16:
// ASCII-heavy catalog text encoded that way is at least a quarter NUL bytes.
func looksUTF16(data []byte) bool {
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	nuls := bytes.Count(sample, []byte{0})
	return nuls > len(sample)/4
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// findHeader locates the first line carrying a recognizable column marker.
func findHeader(lines []string) int {
	limit := headerScanLimit
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		lowered := strings.ToLower(lines[i])
		if strings.Contains(lowered, "sku") || strings.Contains(lowered, "categor") {
			return i
		}
	}
	return -1
}
