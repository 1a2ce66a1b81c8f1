package listing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// ParsePrice strips everything except digits and the decimal point and parses
// what is left, e.g. "R 1,299.95" -> 1299.95
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("no price in %q", raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("bad price %q: %w", raw, err)
	}
	return d, nil
}

// Correction replaces a known supplier typo with the catalog spelling
type Correction struct {
	From string
	To   string
}

// Apply replaces every occurrence of From with To. Occurrences that already
// sit inside a correct spelling (To contains From) are left alone, so
// "H4350" is not turned into "HH4350" by a 4350 -> H4350 rule.
func (c Correction) Apply(s string) string {
	if c.From == "" || !strings.Contains(s, c.From) {
		return s
	}
	offset := strings.Index(c.To, c.From)

	var b strings.Builder
	pos := 0
	for {
		j := strings.Index(s[pos:], c.From)
		if j < 0 {
			break
		}
		i := pos + j
		if offset >= 0 && i >= offset && strings.HasPrefix(s[i-offset:], c.To) {
			b.WriteString(s[pos : i+len(c.From)])
		} else {
			b.WriteString(s[pos:i])
			b.WriteString(c.To)
		}
		pos = i + len(c.From)
	}
	b.WriteString(s[pos:])
	return b.String()
}

// Corrections is an ordered correction table
type Corrections []Correction

// Apply runs every correction in order
func (cs Corrections) Apply(name string) string {
	for _, c := range cs {
		name = c.Apply(name)
	}
	return name
}
