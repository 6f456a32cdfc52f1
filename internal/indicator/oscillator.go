package indicator

// RSI computes the Wilder relative strength index. The first window positions
// are undefined (window deltas are needed). When the average loss over the
// window is zero the divide-by-zero is resolved to RSI = 100; this single
// policy applies everywhere, including flat windows.
func RSI(data []float64, window int) Series {
	out := Undefined(len(data))
	if window <= 0 || len(data) <= window {
		return out
	}
	gains := make([]float64, len(data))
	losses := make([]float64, len(data))
	for i := 1; i < len(data); i++ {
		d := data[i] - data[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	avgGain := mean(gains[1 : window+1])
	avgLoss := mean(losses[1 : window+1])
	out[window] = rsiValue(avgGain, avgLoss)
	w := float64(window)
	for i := window + 1; i < len(data); i++ {
		avgGain = (avgGain*(w-1) + gains[i]) / w
		avgLoss = (avgLoss*(w-1) + losses[i]) / w
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line (EMA(fast)-EMA(slow)), its EMA(signal) signal
// line and the histogram (line - signal).
func MACD(data []float64, fast, slow, signal int) (line, sig, hist Series) {
	emaFast := EMA(data, fast)
	emaSlow := EMA(data, slow)
	line = Undefined(len(data))
	for i := range data {
		if emaFast.Defined(i) && emaSlow.Defined(i) {
			line[i] = emaFast[i] - emaSlow[i]
		}
	}
	sig = emaSeries(line, signal)
	hist = Undefined(len(data))
	for i := range data {
		if line.Defined(i) && sig.Defined(i) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}

// Stochastic returns %K and %D. %K is undefined when the rolling range is
// zero (flat market) rather than propagating a division by zero.
func Stochastic(high, low, close []float64, kWindow, dWindow int) (k, d Series) {
	n := len(close)
	k = Undefined(n)
	if kWindow <= 0 || n < kWindow {
		return k, Undefined(n)
	}
	hh := RollingMax(high, kWindow)
	ll := RollingMin(low, kWindow)
	for i := kWindow - 1; i < n; i++ {
		rng := hh[i] - ll[i]
		if rng == 0 {
			continue
		}
		k[i] = 100 * (close[i] - ll[i]) / rng
	}
	d = smaOfDefined(k, dWindow)
	return k, d
}

// smaOfDefined averages a window of a partially-undefined series; the result
// is defined only where the whole window is.
func smaOfDefined(src Series, window int) Series {
	out := Undefined(len(src))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(src); i++ {
		ok := true
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			v, def := src.At(j)
			if !def {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}
