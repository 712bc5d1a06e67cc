package models

import (
	"regexp"

	"github.com/zurychhh/alpha-machine/errs"
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// Ticker is a validated exchange symbol: uppercase alphabetic, 1-5 characters.
type Ticker string

// NewTicker validates and normalizes raw into a Ticker. Lowercase input is
// upper-cased before validation; anything that still doesn't match the
// pattern is rejected.
func NewTicker(raw string) (Ticker, error) {
	t := Ticker(normalizeTicker(raw))
	if !t.Valid() {
		return "", errs.New(errs.BadInput, "NewTicker", invalidTickerError(raw))
	}
	return t, nil
}

func normalizeTicker(raw string) string {
	upper := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = append(upper, c)
	}
	return string(upper)
}

// Valid reports whether t matches the ticker format.
func (t Ticker) Valid() bool {
	return tickerPattern.MatchString(string(t))
}

func (t Ticker) String() string {
	return string(t)
}

type tickerError struct {
	raw string
}

func invalidTickerError(raw string) error {
	return &tickerError{raw: raw}
}

func (e *tickerError) Error() string {
	return "invalid ticker: " + e.raw
}
