package geodesic

// sum is an error-free transformation of u + v into s + t, where s is the
// rounded sum and t the exact residual.  See Knuth, TAOCP, vol 2, 4.2.3,
// theorem B.
func sum(u, v float64) (s, t float64) {
	s = u + v
	up := s - v
	vpp := s - up
	up -= u
	vpp -= v
	t = -(up + vpp)
	// u + v = s + t = round(u + v) + t
	return s, t
}

// An Accumulator holds a running sum at roughly twice the precision of a
// float64.  The state is a two-term expansion s + t with s the dominant
// term, so the error stays bounded no matter how many nearly cancelling
// terms are added.  Polygon uses this to keep its perimeter and area sums
// honest over millions of vertices.
//
// The zero Accumulator is an empty sum ready for use.
type Accumulator struct {
	s, t float64
}

// Set replaces the running sum with y.
func (acc *Accumulator) Set(y float64) {
	acc.s, acc.t = y, 0
}

// Add adds y to the running sum.
func (acc *Accumulator) Add(y float64) {
	// Start at the least significant end, maintaining the exact sum
	// as [s, t, u].
	y, u := sum(y, acc.t)
	acc.s, acc.t = sum(y, acc.s)
	// The result is in [s, t]; here s = 0 implies t = 0 and we only need
	// to rescue u.  Otherwise u is dominated by t so the sum can't
	// overflow into s.
	if acc.s == 0 {
		acc.s = u
	} else {
		acc.t += u
	}
}

// Sum returns the value of the running sum.
func (acc *Accumulator) Sum() float64 {
	return acc.s
}

// SumWith returns the value the running sum would have if y were added,
// without changing the accumulator.
func (acc *Accumulator) SumWith(y float64) float64 {
	b := *acc
	b.Add(y)
	return b.s
}

// Negate flips the sign of the running sum.
func (acc *Accumulator) Negate() {
	acc.s = -acc.s
	acc.t = -acc.t
}
