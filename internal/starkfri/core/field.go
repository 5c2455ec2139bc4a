// Package core provides the finite-field, polynomial, and Merkle-commitment
// primitives the FRI protocol is built on.
package core

import (
	"fmt"
	"math/big"

	"github.com/halcyon-zk/stark-fri/pkg/starkfri"
)

// Field represents the prime field F_p arithmetic is performed in. A Field
// is immutable after construction and may be shared freely across
// polynomials, codewords, and FRI instances.
type Field struct {
	modulus   *big.Int
	generator *big.Int
}

// FieldElement is a canonical residue in [0, p) together with a pointer to
// the field it belongs to.
type FieldElement struct {
	field *Field
	value *big.Int
}

// NewField builds a field with the given prime modulus and a generator of
// the full multiplicative group F_p*.
func NewField(modulus, generator *big.Int) (*Field, error) {
	if modulus.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("modulus must be greater than 2")
	}
	return &Field{
		modulus:   new(big.Int).Set(modulus),
		generator: new(big.Int).Mod(generator, modulus),
	}, nil
}

// Modulus returns the field's prime modulus.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Equals reports whether two fields share the same modulus.
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// NewElement reduces value modulo p and returns the resulting element.
func (f *Field) NewElement(value *big.Int) *FieldElement {
	return &FieldElement{field: f, value: new(big.Int).Mod(value, f.modulus)}
}

// NewElementFromInt64 reduces an int64 modulo p.
func (f *Field) NewElementFromInt64(value int64) *FieldElement {
	return f.NewElement(big.NewInt(value))
}

// NewElementFromUint64 reduces a uint64 modulo p.
func (f *Field) NewElementFromUint64(value uint64) *FieldElement {
	return f.NewElement(new(big.Int).SetUint64(value))
}

// Zero returns the additive identity.
func (f *Field) Zero() *FieldElement {
	return f.NewElementFromInt64(0)
}

// One returns the multiplicative identity.
func (f *Field) One() *FieldElement {
	return f.NewElementFromInt64(1)
}

// Generator returns a primitive size-th root of unity, g^((p-1)/size).
// size must divide p-1 and be smaller than p, otherwise BadSubgroup.
func (f *Field) Generator(size int64) (*FieldElement, error) {
	pMinus1 := new(big.Int).Sub(f.modulus, big.NewInt(1))
	sizeBig := big.NewInt(size)

	if size <= 0 || sizeBig.Cmp(f.modulus) >= 0 {
		return nil, starkfri.New(starkfri.ErrBadSubgroup, fmt.Sprintf("size %d must be positive and less than p", size))
	}
	rem := new(big.Int).Mod(pMinus1, sizeBig)
	if rem.Sign() != 0 {
		return nil, starkfri.New(starkfri.ErrBadSubgroup, fmt.Sprintf("%d does not divide p-1", size))
	}

	exponent := new(big.Int).Div(pMinus1, sizeBig)
	root := new(big.Int).Exp(f.generator, exponent, f.modulus)
	return f.NewElement(root), nil
}

// Sample reduces an unbounded integer (typically a hash digest interpreted
// little-endian) modulo p to obtain a Fiat-Shamir challenge.
func (f *Field) Sample(seed *big.Int) *FieldElement {
	return f.NewElement(seed)
}

// Coset returns [offset, offset*base, offset*base^2, ..., offset*base^(n-1)]
// computed by sequential multiplication, never by repeated exponentiation.
func (f *Field) Coset(n int, offset, base *FieldElement) []*FieldElement {
	return f.Domain(base, offset, n)
}

// Domain returns the ordered sequence of n terms offset*base^i for i in
// [0, n), computed in O(n) by sequential multiplication.
func (f *Field) Domain(base, offset *FieldElement, n int) []*FieldElement {
	result := make([]*FieldElement, n)
	if n == 0 {
		return result
	}
	current := offset
	for i := 0; i < n; i++ {
		result[i] = current
		if i+1 < n {
			current = current.Mul(base)
		}
	}
	return result
}

// Big returns a copy of the element's canonical residue.
func (fe *FieldElement) Big() *big.Int {
	return new(big.Int).Set(fe.value)
}

// Field returns the field this element belongs to.
func (fe *FieldElement) Field() *Field {
	return fe.field
}

// Add performs field addition.
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot add elements from different fields")
	}
	return fe.field.NewElement(new(big.Int).Add(fe.value, other.value))
}

// Sub performs field subtraction.
func (fe *FieldElement) Sub(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot subtract elements from different fields")
	}
	return fe.field.NewElement(new(big.Int).Sub(fe.value, other.value))
}

// Neg returns the additive inverse.
func (fe *FieldElement) Neg() *FieldElement {
	return fe.field.NewElement(new(big.Int).Neg(fe.value))
}

// Mul performs field multiplication.
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot multiply elements from different fields")
	}
	return fe.field.NewElement(new(big.Int).Mul(fe.value, other.value))
}

// Div performs field division (multiplication by the inverse).
func (fe *FieldElement) Div(other *FieldElement) (*FieldElement, error) {
	if !fe.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot divide elements from different fields")
	}
	inv, err := other.Inv()
	if err != nil {
		return nil, err
	}
	return fe.Mul(inv), nil
}

// Inv computes the multiplicative inverse via the extended Euclidean
// algorithm. Fails with DivByZero semantics when fe is zero.
func (fe *FieldElement) Inv() (*FieldElement, error) {
	if fe.value.Sign() == 0 {
		return nil, starkfri.New(starkfri.ErrDivByZero, "cannot invert zero element")
	}
	gcd := new(big.Int)
	x := new(big.Int)
	y := new(big.Int)
	gcd.GCD(x, y, fe.value, fe.field.modulus)
	if gcd.Cmp(big.NewInt(1)) != 0 {
		return nil, starkfri.New(starkfri.ErrDivByZero, "inverse does not exist")
	}
	if x.Sign() < 0 {
		x.Add(x, fe.field.modulus)
	}
	return fe.field.NewElement(x), nil
}

// Exp computes fe^e mod p for e >= 0.
func (fe *FieldElement) Exp(e *big.Int) *FieldElement {
	if e.Sign() < 0 {
		panic("negative exponent")
	}
	return fe.field.NewElement(new(big.Int).Exp(fe.value, e, fe.field.modulus))
}

// ExpInt64 is a convenience wrapper around Exp for small exponents.
func (fe *FieldElement) ExpInt64(e int64) *FieldElement {
	return fe.Exp(big.NewInt(e))
}

// Square returns fe*fe.
func (fe *FieldElement) Square() *FieldElement {
	return fe.Mul(fe)
}

// Equal reports whether two elements are numerically equal within the same
// field.
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if other == nil || !fe.field.Equals(other.field) {
		return false
	}
	return fe.value.Cmp(other.value) == 0
}

// IsZero reports whether fe is the additive identity.
func (fe *FieldElement) IsZero() bool {
	return fe.value.Sign() == 0
}

// IsOne reports whether fe is the multiplicative identity.
func (fe *FieldElement) IsOne() bool {
	return fe.value.Cmp(big.NewInt(1)) == 0
}

// String renders the element's canonical residue.
func (fe *FieldElement) String() string {
	return fe.value.String()
}

// Bytes returns the minimal little-endian magnitude encoding used for
// hashing (no sign byte, no length prefix).
func (fe *FieldElement) Bytes() []byte {
	be := fe.value.Bytes()
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	return le
}
