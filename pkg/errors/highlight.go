package errors

import (
	"strings"
	"unicode"
)

// maxInstrumentLen bounds the highlight name accepted from a query string.
const maxInstrumentLen = 128

// ValidateInstrument checks a highlighted instrument name taken from user
// input. The name is not required to exist in the table.
func ValidateInstrument(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidHighlight, "instrument name cannot be blank")
	}
	if len(name) > maxInstrumentLen {
		return New(ErrCodeInvalidHighlight, "instrument name too long (max %d bytes)", maxInstrumentLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidHighlight, "instrument name contains control characters")
		}
	}
	return nil
}
