package journal

import "fmt"

// FormatEntryNumber renders the canonical entry number for a year and
// sequence, e.g. JE-2026-000042. Sequences are monotonic per calendar year.
func FormatEntryNumber(year int, seq int64) string {
	return fmt.Sprintf("JE-%d-%06d", year, seq)
}
