// Package fields turns recognized text lines from an invoice's client
// block into named fields. The layout is positional: a heading line,
// the client name, address lines, and a trailing tax id line.
package fields

import (
	"regexp"
	"strings"
)

// Record is one extracted row, matching a spreadsheet row in the output
type Record struct {
	SourceFile    string
	ClientName    string
	ClientAddress string
	TaxID         string
	// TaxIDVerified is true only when the tax id carried a literal
	// "Tax ID" label. Values recovered by the positional fallback are
	// a guess and must not be trusted downstream.
	TaxIDVerified bool
}

// taxIDPrefixLen is how many characters the unlabeled fallback drops from
// the front of the last line. Matches the label length these invoices use,
// but it is a blind offset with no validation.
const taxIDPrefixLen = 6

var taxIDPattern = regexp.MustCompile(`(?i)^tax\s*[_-]?\s*id\s*[:;.]?\s*(.*)$`)

// Parse maps recognized lines to client fields by position. Short inputs
// yield empty-string fields rather than an error: a crop with too little
// text is a bad scan, not a crash.
func Parse(lines []string) Record {
	var record Record

	if len(lines) < 2 {
		return record
	}

	// lines[0] is the "Bill To" style heading
	record.ClientName = strings.TrimSpace(lines[1])

	if len(lines) >= 3 {
		record.TaxID, record.TaxIDVerified = parseTaxID(lines[len(lines)-1])
	}

	if len(lines) >= 4 {
		var parts []string
		for _, line := range lines[2 : len(lines)-1] {
			line = strings.TrimSpace(line)
			if line != "" {
				parts = append(parts, line)
			}
		}
		record.ClientAddress = strings.Join(parts, ", ")
	}

	return record
}

// parseTaxID strips a literal "Tax ID" label when present. Without a
// label it falls back to dropping a fixed number of leading characters,
// and reports the value as unverified.
func parseTaxID(line string) (string, bool) {
	line = strings.TrimSpace(line)

	if m := taxIDPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	runes := []rune(line)
	if len(runes) <= taxIDPrefixLen {
		return "", false
	}
	return strings.TrimSpace(string(runes[taxIDPrefixLen:])), false
}
