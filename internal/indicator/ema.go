package indicator

import "math"

// EMASeries computes the exponential moving average of values over the given
// period. Entries before index period-1 are nil; the value at period-1 is
// seeded with the simple average of the first period values, and every later
// entry follows ema[i] = (v[i]-ema[i-1])*k + ema[i-1] with k = 2/(period+1).
func EMASeries(values []float64, period int) []*float64 {
	out := make([]*float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	k := 2.0 / float64(period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[period-1] = fptr(prev)
	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*k + prev
		out[i] = fptr(prev)
	}
	return out
}

func fptr(v float64) *float64 {
	c := v
	return &c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
