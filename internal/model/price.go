package model

// PricePoint is one trading day of raw upstream data. Date is an 8-digit
// YYYYMMDD key, so lexical order equals chronological order.
type PricePoint struct {
	Date        string  `json:"date"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      int64   `json:"volume"`
	ForeignRate float64 `json:"foreignRate"`
}

// IndicatorBundle holds the derived indicators for one PricePoint. A nil
// field means "not yet computable" (insufficient history); a rounded value
// of exactly 0 is still a non-nil pointer.
type IndicatorBundle struct {
	EMA20      *float64 `json:"ema20"`
	EMA50      *float64 `json:"ema50"`
	EMA200     *float64 `json:"ema200"`
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macdSignal"`
	MACDHist   *float64 `json:"macdHist"`
	OBV        *int64   `json:"obv"`
	MFI        *float64 `json:"mfi"`
	ADX        *float64 `json:"adx"`
}

// Point is an indicator-annotated trading day.
type Point struct {
	PricePoint
	IndicatorBundle
}

// Series is a date-ascending sequence of annotated trading days for one
// symbol, capped at MaxSeriesLen entries (oldest evicted first).
type Series []Point

// MaxSeriesLen is the maximum number of retained trading days per symbol.
const MaxSeriesLen = 300

// Points strips the indicator annotations.
func (s Series) Points() []PricePoint {
	pts := make([]PricePoint, len(s))
	for i, p := range s {
		pts[i] = p.PricePoint
	}
	return pts
}

// LastDate returns the newest date in the series, or "" when empty.
func (s Series) LastDate() string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1].Date
}
