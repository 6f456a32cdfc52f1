package indicator

// FibLevels holds the standard retracement prices between a swing low and
// swing high. Level0 is the low, Level100 the high.
type FibLevels struct {
	Level0   float64
	Level236 float64
	Level382 float64
	Level500 float64
	Level618 float64
	Level786 float64
	Level100 float64
}

// Fibonacci computes retracement levels from a high/low pair.
func Fibonacci(high, low float64) FibLevels {
	diff := high - low
	return FibLevels{
		Level0:   low,
		Level236: low + 0.236*diff,
		Level382: low + 0.382*diff,
		Level500: low + 0.5*diff,
		Level618: low + 0.618*diff,
		Level786: low + 0.786*diff,
		Level100: high,
	}
}
