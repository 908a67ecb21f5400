package ring

// NTT computes the negacyclic NTT of p1 and writes the result on p2.
// The output is in the bit-reversed evaluation order.
func (r *Ring) NTT(p1, p2 Poly) {
	if !samePoly(p1, p2) {
		copy(p2.Coeffs, p1.Coeffs)
	}
	r.nttInPlace(p2.Coeffs)
}

// INTT computes the negacyclic inverse NTT of p1 and writes the result on p2.
func (r *Ring) INTT(p1, p2 Poly) {
	if !samePoly(p1, p2) {
		copy(p2.Coeffs, p1.Coeffs)
	}
	r.inttInPlace(p2.Coeffs)
}

// nttInPlace is a Cooley-Tukey decimation-in-time NTT merged with the
// multiplication by the powers of psi that maps the coefficient domain to
// the negacyclic evaluation domain.
func (r *Ring) nttInPlace(p []uint64) {

	N := r.N
	q := r.Modulus
	qInv := r.MRedConstant

	t := N
	for m := 1; m < N; m <<= 1 {
		t >>= 1
		for i := 0; i < m; i++ {
			j1 := 2 * i * t
			j2 := j1 + t
			F := r.RootsForward[m+i]
			for j := j1; j < j2; j++ {
				U := p[j]
				V := MRed(p[j+t], F, q, qInv)
				p[j] = CRed(U+V, q)
				p[j+t] = CRed(U+q-V, q)
			}
		}
	}
}

// inttInPlace is a Gentleman-Sande decimation-in-frequency inverse NTT,
// followed by the multiplication by N^-1.
func (r *Ring) inttInPlace(p []uint64) {

	N := r.N
	q := r.Modulus
	qInv := r.MRedConstant

	t := 1
	for m := N; m > 1; m >>= 1 {
		h := m >> 1
		j1 := 0
		for i := 0; i < h; i++ {
			j2 := j1 + t
			F := r.RootsBackward[h+i]
			for j := j1; j < j2; j++ {
				U := p[j]
				V := p[j+t]
				p[j] = CRed(U+V, q)
				p[j+t] = MRed(U+q-V, F, q, qInv)
			}
			j1 += 2 * t
		}
		t <<= 1
	}

	nInv := r.NInv
	for j := 0; j < N; j++ {
		p[j] = MRed(p[j], nInv, q, qInv)
	}
}

func samePoly(p1, p2 Poly) bool {
	return len(p1.Coeffs) > 0 && len(p2.Coeffs) > 0 && &p1.Coeffs[0] == &p2.Coeffs[0]
}
