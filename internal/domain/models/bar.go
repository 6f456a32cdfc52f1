package models

import "time"

// AssetClass identifies one of the four screened universes.
type AssetClass string

const (
	ClassEquities    AssetClass = "equities"
	ClassBonds       AssetClass = "bonds"
	ClassCommodities AssetClass = "commodities"
	ClassGolds       AssetClass = "golds"
)

// AllAssetClasses lists classes in the order they are reported.
func AllAssetClasses() []AssetClass {
	return []AssetClass{ClassEquities, ClassBonds, ClassCommodities, ClassGolds}
}

// Valid reports whether c names a known asset class.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassEquities, ClassBonds, ClassCommodities, ClassGolds:
		return true
	}
	return false
}

// PriceBar is one trading day for one instrument. Sequences are chronological;
// calendar gaps are tolerated and must not break indicator computation.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// History is the ordered bar sequence for a single instrument.
type History struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Len returns the number of bars.
func (h History) Len() int { return len(h.Bars) }

// Closes extracts the close series.
func (h History) Closes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high series.
func (h History) Highs() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low series.
func (h History) Lows() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume series.
func (h History) Volumes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Volume
	}
	return out
}
