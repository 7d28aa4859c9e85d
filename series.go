package geodesic

// Series expansions for the geodesic integrals, taken to sixth order in
// the expansion parameter eps.  See Karney, Algorithms for geodesics
// (2011), https://arxiv.org/abs/1109.4448, and the accompanying
// supplement for the derivations.

const (
	geodOrd = 6 // order of the series expansions

	nA1  = geodOrd
	nC1  = geodOrd
	nC1p = geodOrd
	nA2  = geodOrd
	nC2  = geodOrd
	nA3  = geodOrd
	nA3x = nA3
	nC3  = geodOrd
	nC3x = (nC3 * (nC3 - 1)) / 2
	nC4  = geodOrd
	nC4x = (nC4 * (nC4 + 1)) / 2
)

// a1m1f returns A1 - 1, where A1 scales the distance integral I1.
func a1m1f(eps float64) float64 {
	eps2 := sq(eps)
	t := eps2 * (eps2*(eps2+4) + 64) / 256
	return (t + eps) / (1 - eps)
}

// c1f returns the coefficients C1[l] of the sine series for I1;
// c[0] is unused.
func c1f(eps float64) (c [nC1 + 1]float64) {
	eps2 := sq(eps)
	d := eps
	c[1] = d * ((6-eps2)*eps2 - 16) / 32
	d *= eps
	c[2] = d * ((64-9*eps2)*eps2 - 128) / 2048
	d *= eps
	c[3] = d * (9*eps2 - 16) / 768
	d *= eps
	c[4] = d * (3*eps2 - 5) / 512
	d *= eps
	c[5] = -7 * d / 1280
	d *= eps
	c[6] = -7 * d / 2048
	return c
}

// c1pf returns the coefficients C1'[l] of the series reverting I1, used to
// convert a distance into a spherical arc length; c[0] is unused.
func c1pf(eps float64) (c [nC1p + 1]float64) {
	eps2 := sq(eps)
	d := eps
	c[1] = d * (eps2*(205*eps2-432) + 768) / 1536
	d *= eps
	c[2] = d * (eps2*(4005*eps2-4736) + 3840) / 12288
	d *= eps
	c[3] = d * (116 - 225*eps2) / 384
	d *= eps
	c[4] = d * (2695 - 7173*eps2) / 7680
	d *= eps
	c[5] = 3467 * d / 7680
	d *= eps
	c[6] = 38081 * d / 61440
	return c
}

// a2m1f returns A2 - 1, where A2 scales the reduced length integral I2.
func a2m1f(eps float64) float64 {
	eps2 := sq(eps)
	t := eps2 * (eps2*(25*eps2+36) + 64) / 256
	return t*(1-eps) - eps
}

// c2f returns the coefficients C2[l] of the sine series for I2;
// c[0] is unused.
func c2f(eps float64) (c [nC2 + 1]float64) {
	eps2 := sq(eps)
	d := eps
	c[1] = d * (eps2*(eps2+2) + 16) / 32
	d *= eps
	c[2] = d * (eps2*(35*eps2+64) + 384) / 2048
	d *= eps
	c[3] = d * (15*eps2 + 80) / 768
	d *= eps
	c[4] = d * (7*eps2 + 35) / 512
	d *= eps
	c[5] = 63 * d / 1280
	d *= eps
	c[6] = 77 * d / 2048
	return c
}
