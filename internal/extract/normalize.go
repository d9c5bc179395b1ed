package extract

import "strings"

// labelMode says how adapter labels map onto canonical bin types. Calendar
// feed summaries are already clean and pass through verbatim; rendered-page
// headings must match the configured allow-list or be dropped.
type labelMode int

const (
	feedLabels labelMode = iota
	pageLabels
)

// normalizeLabel returns the canonical bin type for a raw label, or false
// when the label should be discarded. Page labels match by case-insensitive
// containment because rendered headings carry markup noise around the name.
func (c Config) normalizeLabel(label string, mode labelMode) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if mode == feedLabels {
		return label, true
	}
	for _, binType := range c.BinTypes {
		if containsFold(label, binType) {
			return binType, true
		}
	}
	return "", false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
