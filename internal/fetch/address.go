package fetch

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// postcodePattern accepts full UK postcodes, with or without the space.
var postcodePattern = regexp.MustCompile(`^[A-Za-z]{1,2}\d[A-Za-z\d]?\s*\d[A-Za-z]{2}$`)

var placeholderPrefixes = []string{"select", "choose", "please", "---"}

// Address is one entry from a council's address-lookup dropdown.
type Address struct {
	UPRN  string
	Label string
}

func ValidPostcode(s string) bool {
	return postcodePattern.MatchString(strings.TrimSpace(s))
}

// ValidUPRN reports whether s looks like a Unique Property Reference
// Number: digits only, at most twelve of them.
func ValidUPRN(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// pickAddress returns the first real option from an address dropdown,
// skipping placeholder entries and options without a property id.
func pickAddress(doc *goquery.Document) (Address, bool) {
	var addr Address
	found := false
	doc.Find("select option").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value := strings.TrimSpace(s.AttrOr("value", ""))
		text := strings.Join(strings.Fields(s.Text()), " ")
		if !ValidUPRN(value) || isPlaceholder(text) {
			return true
		}
		addr = Address{UPRN: value, Label: displayLabel(text)}
		found = true
		return false
	})
	return addr, found
}

func isPlaceholder(text string) bool {
	lower := strings.ToLower(text)
	if lower == "" {
		return true
	}
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// displayLabel tidies the all-caps addresses councils render. The caser is
// built per call; a shared Caser is not safe for concurrent use.
func displayLabel(text string) string {
	return cases.Title(language.BritishEnglish).String(strings.ToLower(text))
}
