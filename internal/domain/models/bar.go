package models

import (
	"errors"
	"fmt"
	"time"
)

// Bar is one trading day for one symbol. Off-exchange and short volume
// default to zero on days the venue did not report them.
type Bar struct {
	Date              time.Time
	Close             float64
	Volume            int64
	OffExchangeVolume int64
	ShortVolume       int64
}

// OffExchangePct returns the off-exchange share of total volume for the day,
// or 0 when no volume was reported.
func (b Bar) OffExchangePct() float64 {
	if b.Volume <= 0 {
		return 0
	}
	return float64(b.OffExchangeVolume) / float64(b.Volume) * 100
}

var (
	ErrEmptySeries      = errors.New("series has no bars")
	ErrUnorderedSeries  = errors.New("series bars out of date order")
	ErrDuplicateDate    = errors.New("series has duplicate date")
	ErrNonPositiveClose = errors.New("series has non-positive close")
)

// Series is the ordered per-symbol sequence of daily bars. Dates are strictly
// increasing; non-trading days are simply absent.
type Series struct {
	Symbol string
	Bars   []Bar
}

// Validate checks the series invariants. A failure here means the symbol is
// dropped from the universe, never that the run aborts.
func (s *Series) Validate() error {
	if len(s.Bars) == 0 {
		return fmt.Errorf("%s: %w", s.Symbol, ErrEmptySeries)
	}
	for i, b := range s.Bars {
		if b.Close <= 0 {
			return fmt.Errorf("%s: bar %s: %w", s.Symbol, b.Date.Format("2006-01-02"), ErrNonPositiveClose)
		}
		if i == 0 {
			continue
		}
		prev := s.Bars[i-1].Date
		switch {
		case b.Date.Equal(prev):
			return fmt.Errorf("%s: bar %s: %w", s.Symbol, b.Date.Format("2006-01-02"), ErrDuplicateDate)
		case b.Date.Before(prev):
			return fmt.Errorf("%s: bar %s: %w", s.Symbol, b.Date.Format("2006-01-02"), ErrUnorderedSeries)
		}
	}
	return nil
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// DroppedSymbol records a symbol excluded from the universe and why, so the
// final report can distinguish "no edge" from "no data".
type DroppedSymbol struct {
	Symbol string
	Reason string
}
