package indicator

import "math"

// SMA computes the simple trailing moving average. The first window-1
// positions are undefined.
func SMA(data []float64, window int) Series {
	out := Undefined(len(data))
	if window <= 0 || len(data) < window {
		return out
	}
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes an exponential moving average seeded with the SMA of the first
// window values; earlier positions are undefined.
func EMA(data []float64, window int) Series {
	return emaSeries(Series(data), window)
}

// emaSeries runs EMA over a possibly partially-undefined source, seeding at
// the first position where a full window of defined values exists.
func emaSeries(src Series, window int) Series {
	out := Undefined(len(src))
	if window <= 0 {
		return out
	}
	first := src.firstDefined()
	if first < 0 || len(src)-first < window {
		return out
	}
	seedEnd := first + window - 1
	out[seedEnd] = mean(src[first : seedEnd+1])
	alpha := 2.0 / (float64(window) + 1.0)
	for i := seedEnd + 1; i < len(src); i++ {
		if math.IsNaN(src[i]) {
			out[i] = out[i-1]
			continue
		}
		out[i] = alpha*src[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Bollinger returns the upper, middle and lower bands: SMA(window) plus or
// minus k rolling sample standard deviations. The middle band is exactly the
// SMA of the same window.
func Bollinger(data []float64, window int, k float64) (upper, middle, lower Series) {
	middle = SMA(data, window)
	upper = Undefined(len(data))
	lower = Undefined(len(data))
	if window <= 0 {
		return upper, middle, lower
	}
	for i := window - 1; i < len(data); i++ {
		sd := sampleStddev(data[i-window+1 : i+1])
		upper[i] = middle[i] + k*sd
		lower[i] = middle[i] - k*sd
	}
	return upper, middle, lower
}

// Momentum computes the fractional change over period bars:
// data[i]/data[i-period] - 1.
func Momentum(data []float64, period int) Series {
	out := Undefined(len(data))
	if period <= 0 {
		return out
	}
	for i := period; i < len(data); i++ {
		if data[i-period] == 0 {
			continue
		}
		out[i] = data[i]/data[i-period] - 1
	}
	return out
}

// Volatility computes annualized realized volatility: the rolling sample
// stddev of daily fractional changes scaled by sqrt(252).
func Volatility(data []float64, window int) Series {
	out := Undefined(len(data))
	if window <= 1 || len(data) < 2 {
		return out
	}
	rets := make([]float64, len(data))
	rets[0] = math.NaN()
	for i := 1; i < len(data); i++ {
		if data[i-1] == 0 {
			rets[i] = 0
			continue
		}
		rets[i] = data[i]/data[i-1] - 1
	}
	for i := window; i < len(data); i++ {
		out[i] = sampleStddev(rets[i-window+1:i+1]) * math.Sqrt(252)
	}
	return out
}

// RollingMax computes the trailing window maximum (resistance proxy).
func RollingMax(data []float64, window int) Series {
	out := Undefined(len(data))
	if window <= 0 || len(data) < window {
		return out
	}
	for i := window - 1; i < len(data); i++ {
		m := data[i-window+1]
		for _, v := range data[i-window+2 : i+1] {
			if v > m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}

// RollingMin computes the trailing window minimum (support proxy).
func RollingMin(data []float64, window int) Series {
	out := Undefined(len(data))
	if window <= 0 || len(data) < window {
		return out
	}
	for i := window - 1; i < len(data); i++ {
		m := data[i-window+1]
		for _, v := range data[i-window+2 : i+1] {
			if v < m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}
