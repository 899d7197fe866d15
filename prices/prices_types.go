package prices

import "errors"

// DefaultSeriesCap is the number of most recent bars a data source hands to
// the search engine
const DefaultSeriesCap = 50

var (
	// ErrNoBars is returned when a series is created without any bars
	ErrNoBars = errors.New("series has no bars")
	// ErrInsufficientData is returned when a window reaches past the oldest bar
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidQuote is returned when a live quote cannot augment a series
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrInvalidPrice is returned when a bar's open or close is not a finite
	// positive number
	ErrInvalidPrice = errors.New("price must be finite and greater than zero")

	errUnrecognisedDocument = errors.New("unrecognised price document")
	errMissingPrice         = errors.New("missing price field")
)

// Bar is one open/close observation for an instrument
type Bar struct {
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
}

// Series is an instrument's bars ordered most-recent-first
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}
