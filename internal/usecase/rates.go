package usecase

// Rate summarizes how often a stat sequence clears a line.
type Rate struct {
	Pct        float64
	Avg        float64
	Samples    int
	SampleSize int
	Seq        []float64
}

// RateOver computes the share of non-null values at or above line.
// Returns nil when fewer than minSamples values are usable, so a thin
// sequence never produces a misleading rate.
func RateOver(values []*float64, line float64, minSamples int) *Rate {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			clean = append(clean, *v)
		}
	}
	if len(clean) < minSamples {
		return nil
	}

	over := 0
	sum := 0.0
	for _, v := range clean {
		if v >= line {
			over++
		}
		sum += v
	}
	return &Rate{
		Pct:     float64(over) / float64(len(clean)),
		Avg:     sum / float64(len(clean)),
		Samples: len(clean),
		Seq:     clean,
	}
}

// SelectBestRate evaluates the newest-first sequence at each candidate
// sample size in ascending order and keeps a later result only when
// its pct is strictly greater, so the smallest qualifying window wins
// ties.
func SelectBestRate(values []*float64, sampleSizes []int, line float64, minSamples int) *Rate {
	var best *Rate
	for _, size := range sampleSizes {
		window := values
		if size < len(window) {
			window = window[:size]
		}
		rate := RateOver(window, line, minSamples)
		if rate == nil {
			continue
		}
		rate.SampleSize = size
		if best == nil || rate.Pct > best.Pct {
			best = rate
		}
	}
	return best
}
