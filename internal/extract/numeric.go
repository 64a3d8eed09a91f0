package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minPlausible = 0.1
	maxPlausible = 500
)

var (
	unitToken    = regexp.MustCompile(`(?i)mg\s*/\s*d[li1]|mg\s*%|mgdl|mmol\s*/\s*l`)
	leadingLabel = regexp.MustCompile(`^[A-Za-z][A-Za-z\s\-/,().]*[:=]?\s*`)
	trailingFlag = regexp.MustCompile(`(?i)\s*(\(?\b[HL]\b\)?|\bHIGH\b|\bLOW\b|\*+)\s*$`)
	// Thousands-grouped numbers match as one token so "1,250" is never read as 1.
	numericToken = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
)

// parseValue pulls the first physiologically plausible number out of a
// noisy OCR line. Units, label fragments and H/L flags are stripped first.
func parseValue(line string) (float64, bool) {
	s := unitToken.ReplaceAllString(line, " ")
	s = strings.TrimSpace(s)
	s = leadingLabel.ReplaceAllString(s, "")
	for {
		stripped := trailingFlag.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}

	for _, tok := range numericToken.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
		if err != nil {
			continue
		}
		if v >= minPlausible && v <= maxPlausible {
			return v, true
		}
	}
	return 0, false
}
