package miner

import (
	"math"

	"StockScope/internal/model"
)

const (
	// LookBack is the context window preceding a candidate buy day.
	LookBack = 10
	// LookForward is the window scanned for the target return.
	LookForward = 20
	// targetReturn is the rally that marks a setup as successful.
	targetReturn = 1.10
)

// EMA trend labels.
const (
	TrendFullyBullish      = "fully bullish maintained"
	TrendBullishTransition = "bullish transition success"
	TrendBearishDeclining  = "bearish declining"
	TrendBearishEscape     = "bearish-escape attempt"
	TrendMixed             = "mixed"
)

// ADX strength labels.
const (
	ADXStrongTrend   = "strong trend sustained"
	ADXStrengthening = "trend strengthening"
	ADXLowEnergy     = "low-energy consolidation"
	ADXModerate      = "moderate"
)

// Mine scans the series for historical buy days followed by a >=10% rally
// within the forward window and labels each hit with the technical context
// of its look-back window. Overlapping candidates are all retained; the
// output is a training-example generator, not a unique-event detector. A
// series shorter than LookBack+LookForward yields an empty result.
func Mine(series model.Series) []model.LearningResult {
	var results []model.LearningResult
	if len(series) < LookBack+LookForward {
		return results
	}

	for i := LookBack - 1; i < len(series)-LookForward; i++ {
		buy := series[i]
		buyPrice := buy.Close

		var success bool
		var successDate string
		var maxHigh float64
		// The earliest qualifying day is latched, but maxHigh keeps tracking
		// the whole forward window.
		for j := i + 1; j <= i+LookForward; j++ {
			if series[j].High > maxHigh {
				maxHigh = series[j].High
			}
			if !success && series[j].High >= buyPrice*targetReturn {
				success = true
				successDate = series[j].Date
			}
		}
		if !success {
			continue
		}

		window := series[i-(LookBack-1) : i+1]
		results = append(results, model.LearningResult{
			BuyDate:      buy.Date,
			SuccessDate:  successDate,
			MaxReturnPct: round2((maxHigh - buyPrice) / buyPrice * 100),
			Context: model.PatternContext{
				EMATrend:         emaTrendLabel(window),
				ADXStrength:      adxStrengthLabel(window),
				VolumeMultiplier: volumeMultiplier(window),
			},
			ContextWindow: window,
		})
	}
	return results
}

func emaTrendLabel(window model.Series) string {
	first := window[0]
	last := window[len(window)-1]
	switch {
	case fullyBullish(last):
		if fullyBullish(first) {
			return TrendFullyBullish
		}
		return TrendBullishTransition
	case fullyBearish(last):
		return TrendBearishDeclining
	case fval(last.EMA20) > fval(last.EMA50) && fullyBearish(first):
		return TrendBearishEscape
	default:
		return TrendMixed
	}
}

func adxStrengthLabel(window model.Series) string {
	last := fval(window[len(window)-1].ADX)
	prev := fval(window[len(window)-2].ADX)
	switch {
	case last > 25:
		return ADXStrongTrend
	case last > 20 && last > prev:
		return ADXStrengthening
	case last < 20:
		return ADXLowEnergy
	default:
		return ADXModerate
	}
}

// volumeMultiplier compares the last day's volume against the mean volume of
// the window's first five days. A zero mean is treated as 1 to guard the
// division.
func volumeMultiplier(window model.Series) float64 {
	var sum float64
	for _, p := range window[:5] {
		sum += float64(p.Volume)
	}
	mean := sum / 5
	if mean == 0 {
		mean = 1
	}
	return round2(float64(window[len(window)-1].Volume) / mean)
}

func fullyBullish(p model.Point) bool {
	return fval(p.EMA20) > fval(p.EMA50) && fval(p.EMA50) > fval(p.EMA200)
}

func fullyBearish(p model.Point) bool {
	return fval(p.EMA20) < fval(p.EMA50) && fval(p.EMA50) < fval(p.EMA200)
}

// fval reads an optional indicator, treating absent as 0 for label
// predicates.
func fval(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
