package indicator

import "math"

// trueRange returns the per-bar true range: max of high-low,
// |high-prevClose|, |low-prevClose|. The first bar uses high-low only.
func trueRange(high, low, close []float64) []float64 {
	n := len(close)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// wilderSmooth seeds with the mean of the first window values starting at
// from and then applies v = (prev*(w-1) + cur) / w.
func wilderSmooth(values []float64, window, from int) Series {
	out := Undefined(len(values))
	if window <= 0 || len(values)-from < window {
		return out
	}
	seedEnd := from + window - 1
	out[seedEnd] = mean(values[from : seedEnd+1])
	w := float64(window)
	for i := seedEnd + 1; i < len(values); i++ {
		out[i] = (out[i-1]*(w-1) + values[i]) / w
	}
	return out
}

// ATR computes the Wilder-smoothed average true range.
func ATR(high, low, close []float64, window int) Series {
	if len(close) == 0 {
		return Series{}
	}
	return wilderSmooth(trueRange(high, low, close), window, 0)
}

// ADX computes the average directional index with +DI/-DI, all Wilder
// smoothed. Flat markets produce undefined values: when the smoothed true
// range is zero the DIs are undefined, and when +DI + -DI is zero DX is
// undefined, so a degenerate series never emits misleading trend strength.
func ADX(high, low, close []float64, window int) (adx, plusDI, minusDI Series) {
	n := len(close)
	adx = Undefined(n)
	plusDI = Undefined(n)
	minusDI = Undefined(n)
	if window <= 0 || n < 2*window {
		return adx, plusDI, minusDI
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	trSmooth := wilderSmooth(trueRange(high, low, close), window, 1)
	pdmSmooth := wilderSmooth(plusDM, window, 1)
	mdmSmooth := wilderSmooth(minusDM, window, 1)

	dx := Undefined(n)
	for i := 0; i < n; i++ {
		tr, ok := trSmooth.At(i)
		if !ok || tr == 0 {
			continue
		}
		p := 100 * pdmSmooth[i] / tr
		m := 100 * mdmSmooth[i] / tr
		plusDI[i] = p
		minusDI[i] = m
		if p+m == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(p-m) / (p + m)
	}

	// ADX = Wilder smoothing of DX over the defined stretch.
	first := dx.firstDefined()
	if first < 0 || n-first < window {
		return adx, plusDI, minusDI
	}
	seedEnd := first + window - 1
	// seed only if the whole seed window is defined
	for i := first; i <= seedEnd; i++ {
		if !dx.Defined(i) {
			return adx, plusDI, minusDI
		}
	}
	adx[seedEnd] = mean(dx[first : seedEnd+1])
	w := float64(window)
	for i := seedEnd + 1; i < n; i++ {
		if !dx.Defined(i) {
			adx[i] = adx[i-1]
			continue
		}
		adx[i] = (adx[i-1]*(w-1) + dx[i]) / w
	}
	return adx, plusDI, minusDI
}
