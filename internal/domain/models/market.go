package models

import "time"

// PricePoint is one daily observation of an adjusted closing price.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries is a chronologically ordered run of daily closes for one
// instrument. Missing observations are dropped at ingestion, never
// zero-filled, so consumers may index from the end without gaps.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Points) }

// Empty reports whether the series carries no observations.
func (s PriceSeries) Empty() bool { return len(s.Points) == 0 }

// PriceTable maps instrument symbols to their price history. A symbol the
// provider could not serve is simply absent.
type PriceTable map[string]PriceSeries

// Quote is the latest known price for an instrument, for display.
type Quote struct {
	Symbol      string    `json:"symbol"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Available   bool      `json:"available"`
	AsOf        time.Time `json:"as_of"`
}

// MacroObservation is one monthly macro reading with its trailing mean.
type MacroObservation struct {
	Month string  `json:"month"` // YYYY-MM
	Value float64 `json:"value"`
	Mean  float64 `json:"mean"`
}

// MacroIndicator is the latest macro value paired with its trailing-N mean.
// Available is false when the provider returned nothing; consumers must
// treat the defensive test as not evaluable in that case.
type MacroIndicator struct {
	SeriesID     string             `json:"series_id"`
	Latest       float64            `json:"latest"`
	TrailingMean float64            `json:"trailing_mean"`
	Observations []MacroObservation `json:"observations"`
	Available    bool               `json:"available"`
}
