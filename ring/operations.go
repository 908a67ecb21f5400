package ring

// Add computes p3 = p1 + p2 mod q.
func (r *Ring) Add(p1, p2, p3 Poly) {
	q := r.Modulus
	for i := 0; i < r.N; i++ {
		p3.Coeffs[i] = CRed(p1.Coeffs[i]+p2.Coeffs[i], q)
	}
}

// Sub computes p3 = p1 - p2 mod q.
func (r *Ring) Sub(p1, p2, p3 Poly) {
	q := r.Modulus
	for i := 0; i < r.N; i++ {
		p3.Coeffs[i] = CRed(p1.Coeffs[i]+q-p2.Coeffs[i], q)
	}
}

// Neg computes p2 = -p1 mod q.
func (r *Ring) Neg(p1, p2 Poly) {
	q := r.Modulus
	for i := 0; i < r.N; i++ {
		if p1.Coeffs[i] == 0 {
			p2.Coeffs[i] = 0
		} else {
			p2.Coeffs[i] = q - p1.Coeffs[i]
		}
	}
}

// MForm switches p1 to the Montgomery domain and writes the result on p2.
func (r *Ring) MForm(p1, p2 Poly) {
	q := r.Modulus
	bredconstant := r.BRedConstant
	for i := 0; i < r.N; i++ {
		p2.Coeffs[i] = MForm(p1.Coeffs[i], q, bredconstant)
	}
}

// IMForm switches p1 out of the Montgomery domain and writes the result on p2.
func (r *Ring) IMForm(p1, p2 Poly) {
	q := r.Modulus
	qInv := r.MRedConstant
	for i := 0; i < r.N; i++ {
		p2.Coeffs[i] = IMForm(p1.Coeffs[i], q, qInv)
	}
}

// MulCoeffsMontgomery computes p3 = p1 * p2 coefficient-wise with a
// Montgomery reduction. One of the two operands must be in the Montgomery
// domain; the output is in the domain of the other operand.
func (r *Ring) MulCoeffsMontgomery(p1, p2, p3 Poly) {
	q := r.Modulus
	qInv := r.MRedConstant
	for i := 0; i < r.N; i++ {
		p3.Coeffs[i] = MRed(p1.Coeffs[i], p2.Coeffs[i], q, qInv)
	}
}

// MulCoeffsMontgomeryThenAdd computes p3 = p3 + p1 * p2 coefficient-wise
// with a Montgomery reduction.
func (r *Ring) MulCoeffsMontgomeryThenAdd(p1, p2, p3 Poly) {
	q := r.Modulus
	qInv := r.MRedConstant
	for i := 0; i < r.N; i++ {
		p3.Coeffs[i] = CRed(p3.Coeffs[i]+MRed(p1.Coeffs[i], p2.Coeffs[i], q, qInv), q)
	}
}

// MulScalar computes p2 = p1 * scalar mod q.
func (r *Ring) MulScalar(p1 Poly, scalar uint64, p2 Poly) {
	q := r.Modulus
	bredconstant := r.BRedConstant
	scalar = BRedAdd(scalar, q, bredconstant)
	for i := 0; i < r.N; i++ {
		p2.Coeffs[i] = BRed(p1.Coeffs[i], scalar, q, bredconstant)
	}
}

// MulByMonomial computes p2 = p1 * X^e in the negacyclic ring, for any
// exponent e taken mod 2N. The two polynomials cannot share their backing
// array.
func (r *Ring) MulByMonomial(p1 Poly, e int, p2 Poly) {

	N := r.N
	q := r.Modulus

	e &= int(r.NthRoot) - 1

	if e >= N {
		e -= N
		// X^(N+e) = -X^e
		for j := 0; j < N; j++ {
			src := j - e
			if src < 0 {
				p2.Coeffs[j] = p1.Coeffs[src+N]
			} else if c := p1.Coeffs[src]; c == 0 {
				p2.Coeffs[j] = 0
			} else {
				p2.Coeffs[j] = q - c
			}
		}
		return
	}

	for j := 0; j < N; j++ {
		src := j - e
		if src < 0 {
			if c := p1.Coeffs[src+N]; c == 0 {
				p2.Coeffs[j] = 0
			} else {
				p2.Coeffs[j] = q - c
			}
		} else {
			p2.Coeffs[j] = p1.Coeffs[src]
		}
	}
}
