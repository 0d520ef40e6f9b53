package lib

import "math"

// Welford single-pass mean and variance accumulator over float64
// samples, Welford's recurrence keeps it numerically stable on the
// small, skewed sample sets that per-slab utilization produces.
type Welford struct {
	n    int64
	mean float64
	m2   float64
	minv float64
	maxv float64
}

// Sample feed one measurement into the summary.
func (w *Welford) Sample(v float64) {
	w.n++
	if w.n == 1 {
		w.minv, w.maxv = v, v
	} else if v < w.minv {
		w.minv = v
	} else if v > w.maxv {
		w.maxv = v
	}
	delta := v - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (v - w.mean)
}

// Count number of samples fed so far.
func (w *Welford) Count() int64 {
	return w.n
}

// Min smallest sample fed so far, zero before the first sample.
func (w *Welford) Min() float64 {
	return w.minv
}

// Max largest sample fed so far, zero before the first sample.
func (w *Welford) Max() float64 {
	return w.maxv
}

// Mean running average of samples fed so far.
func (w *Welford) Mean() float64 {
	return w.mean
}

// Variance population variance of samples fed so far.
func (w *Welford) Variance() float64 {
	if w.n == 0 {
		return 0
	}
	return w.m2 / float64(w.n)
}

// SD population standard deviation of samples fed so far.
func (w *Welford) SD() float64 {
	return math.Sqrt(w.Variance())
}
