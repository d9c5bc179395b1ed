package extract

// Config carries the vocabulary and formats one engine instance works with.
// Callers hold their own copy; nothing in this package is process-global.
type Config struct {
	// BinTypes is the closed allow-list for labels lifted from rendered
	// pages. Calendar feed labels bypass it.
	BinTypes []string
	// DateFormats are tried strictly in order; the first layout that
	// parses wins.
	DateFormats []string
	// OutputDateFormat renders payload dates. It must stay parseable by
	// one of DateFormats so feed-derived date text round-trips.
	OutputDateFormat string
}

func DefaultConfig() Config {
	return Config{
		BinTypes: []string{
			"Garden Waste",
			"Food waste",
			"Mixed recycling",
			"Paper and card",
			"Non-recyclable waste",
		},
		DateFormats: []string{
			"Monday 2 January 2006",
			"Monday 2 January",
			"2 January 2006",
			"2 January",
			"2/1/2006",
			"2-1-2006",
		},
		OutputDateFormat: "02/01/2006",
	}
}
