package core

import (
	"fmt"
	"strings"

	"github.com/halcyon-zk/stark-fri/pkg/starkfri"
)

// Polynomial is a dense univariate polynomial over a Field, stored as
// coefficients indexed by exponent: coefficients[i] is the coefficient of
// x^i. Trailing zero coefficients are always trimmed at construction, so
// Degree() is the largest index with a nonzero coefficient and the zero
// polynomial is represented as a single zero coefficient.
type Polynomial struct {
	field        *Field
	coefficients []*FieldElement
}

// NewPolynomial builds a polynomial from coefficients, trimming trailing
// zeros. coefficients must be nonempty and share a single field.
func NewPolynomial(coefficients []*FieldElement) (*Polynomial, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("polynomial must have at least one coefficient")
	}
	field := coefficients[0].Field()
	for i, c := range coefficients {
		if !c.Field().Equals(field) {
			return nil, fmt.Errorf("coefficient %d is from a different field", i)
		}
	}
	return &Polynomial{field: field, coefficients: trim(coefficients, field)}, nil
}

// trim drops trailing zero coefficients, leaving at least one element.
func trim(coefficients []*FieldElement, field *Field) []*FieldElement {
	last := len(coefficients) - 1
	for last > 0 && coefficients[last].IsZero() {
		last--
	}
	out := make([]*FieldElement, last+1)
	copy(out, coefficients[:last+1])
	return out
}

// Field returns the field the polynomial is defined over.
func (p *Polynomial) Field() *Field {
	return p.field
}

// Degree returns the largest index with a nonzero coefficient. The zero
// polynomial has degree 0.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether the polynomial is identically zero.
func (p *Polynomial) IsZero() bool {
	return len(p.coefficients) == 1 && p.coefficients[0].IsZero()
}

// Coefficient returns the coefficient of x^degree, or the field's zero if
// degree is out of range.
func (p *Polynomial) Coefficient(degree int) *FieldElement {
	if degree < 0 || degree >= len(p.coefficients) {
		return p.field.Zero()
	}
	return p.coefficients[degree]
}

// Term returns a single-term polynomial coeff*x^degree.
func Term(field *Field, coeff *FieldElement, degree int) (*Polynomial, error) {
	coeffs := make([]*FieldElement, degree+1)
	for i := range coeffs {
		coeffs[i] = field.Zero()
	}
	coeffs[degree] = coeff
	return NewPolynomial(coeffs)
}

// PopTerm removes and returns the leading term (coefficient and degree) of
// p, and the remaining polynomial with that term removed.
func (p *Polynomial) PopTerm() (coeff *FieldElement, degree int, rest *Polynomial) {
	coeff = p.LeadingCoefficient()
	degree = p.Degree()
	if degree == 0 {
		return coeff, degree, mustZero(p.field)
	}
	rest, err := NewPolynomial(p.coefficients[:degree])
	if err != nil {
		panic(err)
	}
	return coeff, degree, rest
}

func mustZero(field *Field) *Polynomial {
	p, _ := NewPolynomial([]*FieldElement{field.Zero()})
	return p
}

// LeadingCoefficient returns the coefficient of the highest-degree term.
func (p *Polynomial) LeadingCoefficient() *FieldElement {
	return p.coefficients[len(p.coefficients)-1]
}

// Coefficients returns a copy of the coefficient vector.
func (p *Polynomial) Coefficients() []*FieldElement {
	out := make([]*FieldElement, len(p.coefficients))
	copy(out, p.coefficients)
	return out
}

// IsEqual reports whether two polynomials have identical non-trailing-zero
// prefixes.
func (p *Polynomial) IsEqual(other *Polynomial) bool {
	if !p.field.Equals(other.field) {
		return false
	}
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := range p.coefficients {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// Eval evaluates the polynomial at point via Horner's method.
func (p *Polynomial) Eval(point *FieldElement) *FieldElement {
	result := p.field.Zero()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.Mul(point).Add(p.coefficients[i])
	}
	return result
}

// EvalBatch evaluates the polynomial at every point in domain.
func (p *Polynomial) EvalBatch(domain []*FieldElement) []*FieldElement {
	out := make([]*FieldElement, len(domain))
	for i, x := range domain {
		out[i] = p.Eval(x)
	}
	return out
}

// Add returns p + other.
func (p *Polynomial) Add(other *Polynomial) (*Polynomial, error) {
	if !p.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot add polynomials from different fields")
	}
	n := max(len(p.coefficients), len(other.coefficients))
	out := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coefficient(i).Add(other.Coefficient(i))
	}
	return NewPolynomial(out)
}

// Sub returns p - other.
func (p *Polynomial) Sub(other *Polynomial) (*Polynomial, error) {
	if !p.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot subtract polynomials from different fields")
	}
	n := max(len(p.coefficients), len(other.coefficients))
	out := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		out[i] = p.Coefficient(i).Sub(other.Coefficient(i))
	}
	return NewPolynomial(out)
}

// Mul returns p * other.
func (p *Polynomial) Mul(other *Polynomial) (*Polynomial, error) {
	if !p.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot multiply polynomials from different fields")
	}
	out := make([]*FieldElement, len(p.coefficients)+len(other.coefficients)-1)
	for i := range out {
		out[i] = p.field.Zero()
	}
	for i, a := range p.coefficients {
		for j, b := range other.coefficients {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return NewPolynomial(out)
}

// MulScalar returns p scaled by the given field element.
func (p *Polynomial) MulScalar(scalar *FieldElement) (*Polynomial, error) {
	if !scalar.Field().Equals(p.field) {
		return nil, fmt.Errorf("cannot scale by element from a different field")
	}
	out := make([]*FieldElement, len(p.coefficients))
	for i, c := range p.coefficients {
		out[i] = c.Mul(scalar)
	}
	return NewPolynomial(out)
}

// Scale returns p(c*x): each coefficient c_i is scaled by factor^i.
func (p *Polynomial) Scale(factor *FieldElement) (*Polynomial, error) {
	if !factor.Field().Equals(p.field) {
		return nil, fmt.Errorf("cannot scale by element from a different field")
	}
	out := make([]*FieldElement, len(p.coefficients))
	power := p.field.One()
	for i, c := range p.coefficients {
		out[i] = c.Mul(power)
		power = power.Mul(factor)
	}
	return NewPolynomial(out)
}

// Exp raises p to a nonnegative integer power via square-and-multiply.
func (p *Polynomial) Exp(exponent int) (*Polynomial, error) {
	if exponent < 0 {
		return nil, fmt.Errorf("negative exponents not supported")
	}
	result, err := NewPolynomial([]*FieldElement{p.field.One()})
	if err != nil {
		return nil, err
	}
	base := p
	for e := exponent; e > 0; e >>= 1 {
		if e&1 == 1 {
			result, err = result.Mul(base)
			if err != nil {
				return nil, err
			}
		}
		if e > 1 {
			base, err = base.Mul(base)
			if err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// Compose substitutes q for the indeterminate: returns p(q(x)), computed in
// O(deg(p) * deg(q)) via Horner's method.
func (p *Polynomial) Compose(q *Polynomial) (*Polynomial, error) {
	if !p.field.Equals(q.field) {
		return nil, fmt.Errorf("cannot compose polynomials from different fields")
	}
	result, err := NewPolynomial([]*FieldElement{p.field.Zero()})
	if err != nil {
		return nil, err
	}
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result, err = result.Mul(q)
		if err != nil {
			return nil, err
		}
		constTerm, err := NewPolynomial([]*FieldElement{p.coefficients[i]})
		if err != nil {
			return nil, err
		}
		result, err = result.Add(constTerm)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Div performs schoolbook long division, returning quotient and remainder
// such that p == quotient*other + remainder and deg(remainder) < deg(other).
// Fails if other is the zero polynomial.
func (p *Polynomial) Div(other *Polynomial) (quotient, remainder *Polynomial, err error) {
	if !p.field.Equals(other.field) {
		return nil, nil, fmt.Errorf("cannot divide polynomials from different fields")
	}
	if other.IsZero() {
		return nil, nil, starkfri.New(starkfri.ErrDivByZero, "divisor is zero")
	}
	if other.Degree() > p.Degree() && !p.IsZero() {
		zero, _ := NewPolynomial([]*FieldElement{p.field.Zero()})
		remCopy, _ := NewPolynomial(p.coefficients)
		return zero, remCopy, nil
	}

	remCoeffs := make([]*FieldElement, len(p.coefficients))
	copy(remCoeffs, p.coefficients)
	rem, err := NewPolynomial(remCoeffs)
	if err != nil {
		return nil, nil, err
	}

	leadInv, err := other.LeadingCoefficient().Inv()
	if err != nil {
		return nil, nil, starkfri.Wrap(starkfri.ErrDivByZero, "divisor leading coefficient is not invertible", err)
	}

	quotCoeffs := make([]*FieldElement, 0)
	for !rem.IsZero() && rem.Degree() >= other.Degree() {
		shift := rem.Degree() - other.Degree()
		factor := rem.LeadingCoefficient().Mul(leadInv)

		monomial, err := Term(p.field, factor, shift)
		if err != nil {
			return nil, nil, err
		}
		for len(quotCoeffs) <= shift {
			quotCoeffs = append(quotCoeffs, p.field.Zero())
		}
		quotCoeffs[shift] = factor

		scaled, err := other.Mul(monomial)
		if err != nil {
			return nil, nil, err
		}
		rem, err = rem.Sub(scaled)
		if err != nil {
			return nil, nil, err
		}
	}

	if len(quotCoeffs) == 0 {
		quotCoeffs = []*FieldElement{p.field.Zero()}
	}
	quotient, err = NewPolynomial(quotCoeffs)
	if err != nil {
		return nil, nil, err
	}
	return quotient, rem, nil
}

// SafeDiv divides p by other and additionally fails with
// NonZeroRemainder if the division does not come out exact.
func (p *Polynomial) SafeDiv(other *Polynomial) (*Polynomial, error) {
	quotient, remainder, err := p.Div(other)
	if err != nil {
		return nil, err
	}
	if !remainder.IsZero() {
		return nil, starkfri.New(starkfri.ErrNonZeroRemainder, "division left a nonzero remainder")
	}
	return quotient, nil
}

// Point is an (x, y) pair used for interpolation and colinearity testing.
type Point struct {
	X *FieldElement
	Y *FieldElement
}

// Lagrange interpolates the unique polynomial of degree < len(xs) through
// (xs[i], ys[i]) for all i, in O(n^2) field operations.
func Lagrange(field *Field, xs, ys []*FieldElement) (*Polynomial, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("xs and ys must have equal length")
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("need at least one point for interpolation")
	}

	// Master numerator: prod(x - x_i)
	master, err := NewPolynomial([]*FieldElement{field.One()})
	if err != nil {
		return nil, err
	}
	for _, x := range xs {
		factor, err := NewPolynomial([]*FieldElement{x.Neg(), field.One()})
		if err != nil {
			return nil, err
		}
		master, err = master.Mul(factor)
		if err != nil {
			return nil, err
		}
	}

	result, err := NewPolynomial([]*FieldElement{field.Zero()})
	if err != nil {
		return nil, err
	}

	for i, xi := range xs {
		linear, err := NewPolynomial([]*FieldElement{xi.Neg(), field.One()})
		if err != nil {
			return nil, err
		}
		numerator, err := master.SafeDiv(linear)
		if err != nil {
			return nil, err
		}

		denom := field.One()
		for j, xj := range xs {
			if i == j {
				continue
			}
			diff := xi.Sub(xj)
			if diff.IsZero() {
				return nil, fmt.Errorf("duplicate x-coordinates found")
			}
			denom = denom.Mul(diff)
		}
		denomInv, err := denom.Inv()
		if err != nil {
			return nil, err
		}

		weight := ys[i].Mul(denomInv)
		term, err := numerator.MulScalar(weight)
		if err != nil {
			return nil, err
		}
		result, err = result.Add(term)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// TestColinearity interpolates the line through three (x,y) pairs and
// reports whether it has degree <= 1, i.e. the points are colinear.
func TestColinearity(field *Field, xs, ys []*FieldElement) (bool, error) {
	if len(xs) != 3 || len(ys) != 3 {
		return false, fmt.Errorf("colinearity test requires exactly three points")
	}
	poly, err := Lagrange(field, xs, ys)
	if err != nil {
		return false, err
	}
	return poly.Degree() <= 1, nil
}

// TestColinearityBatch runs TestColinearity over a batch of triples,
// amortizing field inversions across all of them via BatchInversion. This
// is the algebraic heart of FRI folding verification.
func TestColinearityBatch(field *Field, xsBatch, ysBatch [][]*FieldElement) (bool, error) {
	if len(xsBatch) != len(ysBatch) {
		return false, fmt.Errorf("xsBatch and ysBatch must have equal length")
	}

	// Gather every denominator (x_i - x_j), i != j, across all triples so a
	// single BatchInversion call serves the whole batch.
	type denomRef struct {
		tripleIdx, i, j int
	}
	var denoms []*FieldElement
	var refs []denomRef

	for t := range xsBatch {
		xs := xsBatch[t]
		if len(xs) != 3 || len(ysBatch[t]) != 3 {
			return false, fmt.Errorf("colinearity test requires exactly three points per triple")
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if i == j {
					continue
				}
				diff := xs[i].Sub(xs[j])
				if diff.IsZero() {
					return false, fmt.Errorf("duplicate x-coordinates found in triple %d", t)
				}
				denoms = append(denoms, diff)
				refs = append(refs, denomRef{t, i, j})
			}
		}
	}

	inverses, err := field.BatchInversion(denoms)
	if err != nil {
		return false, err
	}
	invLookup := make(map[[3]int]*FieldElement, len(refs))
	for k, r := range refs {
		invLookup[[3]int{r.tripleIdx, r.i, r.j}] = inverses[k]
	}

	for t := range xsBatch {
		ys := ysBatch[t]
		// Slope between points 0 and 1 must match the slope between 0 and 2.
		invDenom01 := invLookup[[3]int{t, 0, 1}]
		invDenom02 := invLookup[[3]int{t, 0, 2}]
		slope01 := ys[0].Sub(ys[1]).Mul(invDenom01)
		slope02 := ys[0].Sub(ys[2]).Mul(invDenom02)
		if !slope01.Equal(slope02) {
			return false, nil
		}
	}
	return true, nil
}

// String renders the polynomial in descending-degree term form.
func (p *Polynomial) String() string {
	if p.Degree() == 0 {
		return p.coefficients[0].String()
	}
	var terms []string
	for i := p.Degree(); i >= 0; i-- {
		c := p.Coefficient(i)
		if c.IsZero() {
			continue
		}
		switch {
		case i == 0:
			terms = append(terms, c.String())
		case i == 1:
			if c.IsOne() {
				terms = append(terms, "x")
			} else {
				terms = append(terms, c.String()+"x")
			}
		default:
			if c.IsOne() {
				terms = append(terms, fmt.Sprintf("x^%d", i))
			} else {
				terms = append(terms, fmt.Sprintf("%sx^%d", c.String(), i))
			}
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}
