package core

import (
	"fmt"

	"github.com/halcyon-zk/stark-fri/pkg/starkfri"
)

// BatchInversion inverts every element of elements in a single pass using
// Montgomery's trick: one accumulated product, one inversion, then a
// back-substitution sweep. fri.New uses it once per FRI instance to
// precompute the inverse domain used for folding, instead of calling Inv per
// element.
func (f *Field) BatchInversion(elements []*FieldElement) ([]*FieldElement, error) {
	n := len(elements)
	if n == 0 {
		return []*FieldElement{}, nil
	}
	if n == 1 {
		inv, err := elements[0].Inv()
		if err != nil {
			return nil, err
		}
		return []*FieldElement{inv}, nil
	}

	for i, elem := range elements {
		if elem.IsZero() {
			return nil, starkfri.New(starkfri.ErrDivByZero, fmt.Sprintf("cannot invert zero element at index %d", i))
		}
	}

	acc := make([]*FieldElement, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}

	accInv, err := acc[n-1].Inv()
	if err != nil {
		return nil, starkfri.Wrap(starkfri.ErrDivByZero, "failed to invert accumulator", err)
	}

	results := make([]*FieldElement, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv

	return results, nil
}

// BatchMultiplication multiplies a and b element-wise.
func (f *Field) BatchMultiplication(a, b []*FieldElement) ([]*FieldElement, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("batch multiplication requires equal-length arrays")
	}
	results := make([]*FieldElement, len(a))
	for i := range a {
		results[i] = a[i].Mul(b[i])
	}
	return results, nil
}

// BatchExponentiation raises every base to the same exponent.
func (f *Field) BatchExponentiation(bases []*FieldElement, exponent int64) []*FieldElement {
	results := make([]*FieldElement, len(bases))
	for i := range bases {
		results[i] = bases[i].ExpInt64(exponent)
	}
	return results
}
