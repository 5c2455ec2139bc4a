package core

import "fmt"

// InterpolateFFT interpolates the polynomial of degree < len(domain) that
// evaluates to values on domain, where domain is a coset offset*<omega> of
// power-of-two size. It runs the inverse transform over <omega>, then undoes
// the offset scaling by multiplying coefficient i by offset^-i.
func InterpolateFFT(field *Field, omega, offset *FieldElement, values []*FieldElement) (*Polynomial, error) {
	n := len(values)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("NotAPowerOfTwo: domain length must be a power of two, got %d", n)
	}

	coeffs, err := ifft(field, omega, values)
	if err != nil {
		return nil, err
	}

	if offset != nil && !offset.IsOne() {
		offsetInv, err := offset.Inv()
		if err != nil {
			return nil, err
		}
		power := field.One()
		for i := range coeffs {
			coeffs[i] = coeffs[i].Mul(power)
			power = power.Mul(offsetInv)
		}
	}

	return NewPolynomial(coeffs)
}

// EvaluateFFT evaluates a polynomial of degree < len(domain) over the coset
// offset*<omega> using the forward NTT.
func EvaluateFFT(field *Field, omega, offset *FieldElement, poly *Polynomial) ([]*FieldElement, error) {
	// The transform size is the multiplicative order of omega, found by
	// repeated squaring; it must be a power of two.
	n := 1
	for w := omega; !w.IsOne(); w = w.Square() {
		n *= 2
		if n > 1<<30 {
			return nil, fmt.Errorf("NotAPowerOfTwo: omega does not have power-of-two order")
		}
	}
	coeffs := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		coeffs[i] = poly.Coefficient(i)
	}

	if offset != nil && !offset.IsOne() {
		power := field.One()
		for i := range coeffs {
			coeffs[i] = coeffs[i].Mul(power)
			power = power.Mul(offset)
		}
	}

	return fft(field, omega, coeffs)
}

// fft runs the radix-2 Cooley-Tukey forward NTT with twiddle factor omega,
// a primitive len(values)-th root of unity.
func fft(field *Field, omega *FieldElement, values []*FieldElement) ([]*FieldElement, error) {
	n := len(values)
	if n <= 1 {
		out := make([]*FieldElement, n)
		copy(out, values)
		return out, nil
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("NotAPowerOfTwo: FFT requires power-of-two size, got %d", n)
	}

	result := make([]*FieldElement, n)
	copy(result, values)

	logN := bitLength(n) - 1
	for i := 0; i < n; i++ {
		j := reverseBits(i, logN)
		if i < j {
			result[i], result[j] = result[j], result[i]
		}
	}

	for s := 1; s <= logN; s++ {
		m := 1 << s
		half := m / 2
		wm := omega.ExpInt64(int64(n / m))

		for k := 0; k < n; k += m {
			w := field.One()
			for j := 0; j < half; j++ {
				t := w.Mul(result[k+j+half])
				u := result[k+j]
				result[k+j] = u.Add(t)
				result[k+j+half] = u.Sub(t)
				w = w.Mul(wm)
			}
		}
	}

	return result, nil
}

// ifft runs the inverse NTT: forward transform with omega^-1, then scale by
// n^-1.
func ifft(field *Field, omega *FieldElement, values []*FieldElement) ([]*FieldElement, error) {
	n := len(values)
	omegaInv, err := omega.Inv()
	if err != nil {
		return nil, err
	}
	coeffs, err := fft(field, omegaInv, values)
	if err != nil {
		return nil, err
	}
	nInv, err := field.NewElementFromInt64(int64(n)).Inv()
	if err != nil {
		return nil, err
	}
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(nInv)
	}
	return coeffs, nil
}

func reverseBits(n, bitLen int) int {
	result := 0
	for i := 0; i < bitLen; i++ {
		if n&(1<<i) != 0 {
			result |= 1 << (bitLen - 1 - i)
		}
	}
	return result
}

func bitLength(n int) int {
	bits := 0
	for n > 0 {
		bits++
		n >>= 1
	}
	return bits
}
