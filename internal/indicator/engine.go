package indicator

import (
	"math"

	"StockScope/internal/model"
)

// Compute annotates a date-ascending sequence of price points with all nine
// derived indicators. It is a pure function: the same input always produces
// the same output, and it never fails: insufficient history simply leaves
// the affected prefix nil. An empty input yields an empty series.
func Compute(points []model.PricePoint) model.Series {
	n := len(points)
	series := make(model.Series, n)
	if n == 0 {
		return series
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, p := range points {
		closes[i] = p.Close
		highs[i] = p.High
		lows[i] = p.Low
		volumes[i] = float64(p.Volume)
	}

	ema20 := EMASeries(closes, 20)
	ema50 := EMASeries(closes, 50)
	ema200 := EMASeries(closes, 200)

	rsi := computeRSI(closes, 14)
	macd, signal, hist := computeMACD(closes)
	obv := computeOBV(closes, points)
	mfi := computeMFI(highs, lows, closes, volumes, 14)
	adx := computeADX(highs, lows, closes, 14)

	for i := range series {
		series[i].PricePoint = points[i]
		b := &series[i].IndicatorBundle
		b.EMA20 = roundInt(ema20[i])
		b.EMA50 = roundInt(ema50[i])
		b.EMA200 = roundInt(ema200[i])
		b.RSI = roundTwo(rsi[i])
		b.MACD = roundTwo(macd[i])
		b.MACDSignal = roundTwo(signal[i])
		b.MACDHist = roundTwo(hist[i])
		b.OBV = &obv[i]
		b.MFI = roundTwo(mfi[i])
		b.ADX = roundTwo(adx[i])
	}
	return series
}

// computeRSI applies Wilder smoothing over close-to-close changes. Values are
// defined from index period+1; a zero average loss maps to RSI 100.
func computeRSI(closes []float64, period int) []*float64 {
	n := len(closes)
	out := make([]*float64, n)
	if n <= period {
		return out
	}
	var gains, losses float64
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff >= 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	for i := period + 1; i < n; i++ {
		diff := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if diff >= 0 {
			gain = diff
		} else {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		if avgLoss == 0 {
			out[i] = fptr(100)
		} else {
			out[i] = fptr(100 - 100/(1+avgGain/avgLoss))
		}
	}
	return out
}

// computeMACD returns the MACD line (EMA12-EMA26), its signal line and the
// histogram. The signal is an EMA(9) over the contiguous sub-sequence where
// the MACD line is defined, re-aligned to the original indices afterwards;
// this keeps the seed anchored to the first defined MACD value.
func computeMACD(closes []float64) (macd, signal, hist []*float64) {
	n := len(closes)
	macd = make([]*float64, n)
	signal = make([]*float64, n)
	hist = make([]*float64, n)

	ema12 := EMASeries(closes, 12)
	ema26 := EMASeries(closes, 26)

	var defined []float64
	for i := 0; i < n; i++ {
		if ema12[i] != nil && ema26[i] != nil {
			macd[i] = fptr(*ema12[i] - *ema26[i])
			defined = append(defined, *macd[i])
		}
	}

	sub := EMASeries(defined, 9)
	j := 0
	for i := 0; i < n; i++ {
		if macd[i] == nil {
			continue
		}
		if sub[j] != nil {
			signal[i] = fptr(*sub[j])
			hist[i] = fptr(*macd[i] - *signal[i])
		}
		j++
	}
	return macd, signal, hist
}

// computeOBV accumulates signed volume: up closes add, down closes subtract,
// flat closes carry the previous value. Defined from index 0 with obv[0]=0.
func computeOBV(closes []float64, points []model.PricePoint) []int64 {
	out := make([]int64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + points[i].Volume
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - points[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// computeMFI ratios positive to negative money flow over a trailing window
// of typical prices. A zero negative flow maps to MFI 100.
func computeMFI(highs, lows, closes, volumes []float64, period int) []*float64 {
	n := len(closes)
	out := make([]*float64, n)
	if n <= period {
		return out
	}
	tp := make([]float64, n)
	mf := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
		mf[i] = tp[i] * volumes[i]
	}
	for i := period; i < n; i++ {
		var pos, neg float64
		for j := i - period + 1; j <= i; j++ {
			if tp[j] > tp[j-1] {
				pos += mf[j]
			} else if tp[j] < tp[j-1] {
				neg += mf[j]
			}
		}
		if neg == 0 {
			out[i] = fptr(100)
		} else {
			out[i] = fptr(100 - 100/(1+pos/neg))
		}
	}
	return out
}

// computeADX Wilder-smooths +DM/-DM/true-range, derives DX and averages the
// trailing period of DX values. First defined at index 2*period.
func computeADX(highs, lows, closes []float64, period int) []*float64 {
	n := len(highs)
	out := make([]*float64, n)
	if n <= 2*period {
		return out
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		tr[i] = math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var smoothTR, smoothPlus, smoothMinus float64
	for i := 1; i <= period; i++ {
		smoothTR += tr[i]
		smoothPlus += plusDM[i]
		smoothMinus += minusDM[i]
	}

	p := float64(period)
	var dx []float64
	for i := period + 1; i < n; i++ {
		smoothTR = smoothTR - smoothTR/p + tr[i]
		smoothPlus = smoothPlus - smoothPlus/p + plusDM[i]
		smoothMinus = smoothMinus - smoothMinus/p + minusDM[i]

		// Zero range (flat market) contributes a DX of 0 rather than NaN.
		var d float64
		if smoothTR > 0 {
			plusDI := 100 * (smoothPlus / smoothTR)
			minusDI := 100 * (smoothMinus / smoothTR)
			if sum := plusDI + minusDI; sum > 0 {
				d = 100 * math.Abs(plusDI-minusDI) / sum
			}
		}
		dx = append(dx, d)

		if len(dx) >= period {
			var sum float64
			for _, v := range dx[len(dx)-period:] {
				sum += v
			}
			out[i] = fptr(sum / p)
		}
	}
	return out
}

func roundInt(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return fptr(math.Round(*v))
}

func roundTwo(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return fptr(round2(*v))
}
