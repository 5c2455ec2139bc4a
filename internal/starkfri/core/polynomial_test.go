package core

import (
	"math/big"
	"math/rand"
	"testing"
)

func testField97(t *testing.T) *Field {
	t.Helper()
	// 97 is prime; 5 generates F_97*.
	field, err := NewField(big.NewInt(97), big.NewInt(5))
	if err != nil {
		t.Fatalf("NewField failed: %v", err)
	}
	return field
}

func mustPoly(t *testing.T, coeffs []*FieldElement) *Polynomial {
	t.Helper()
	p, err := NewPolynomial(coeffs)
	if err != nil {
		t.Fatalf("NewPolynomial failed: %v", err)
	}
	return p
}

func fe(field *Field, v int64) *FieldElement {
	return field.NewElementFromInt64(v)
}

// TestDivisionSeedsE5 seeds spec.md E5: (x^2 + 2x - 7) / (x - 2) = (x + 4)
// remainder 1.
func TestDivisionSeedsE5(t *testing.T) {
	field := testField97(t)
	dividend := mustPoly(t, []*FieldElement{fe(field, -7), fe(field, 2), fe(field, 1)})
	divisor := mustPoly(t, []*FieldElement{fe(field, -2), fe(field, 1)})

	quotient, remainder, err := dividend.Div(divisor)
	if err != nil {
		t.Fatalf("Div failed: %v", err)
	}

	wantQuotient := mustPoly(t, []*FieldElement{fe(field, 4), fe(field, 1)})
	wantRemainder := mustPoly(t, []*FieldElement{fe(field, 1)})

	if !quotient.IsEqual(wantQuotient) {
		t.Errorf("quotient = %s, want %s", quotient, wantQuotient)
	}
	if !remainder.IsEqual(wantRemainder) {
		t.Errorf("remainder = %s, want %s", remainder, wantRemainder)
	}
}

// TestDivisionInvariant checks invariant 4: poly == quotient*divisor +
// remainder and deg(remainder) < deg(divisor), over a handful of random
// polynomials.
func TestDivisionInvariant(t *testing.T) {
	field := testField97(t)
	rng := rand.New(rand.NewSource(7))

	randomPoly := func(degree int) *Polynomial {
		coeffs := make([]*FieldElement, degree+1)
		for i := range coeffs {
			coeffs[i] = fe(field, int64(rng.Intn(97)))
		}
		if coeffs[degree].IsZero() {
			coeffs[degree] = fe(field, 1)
		}
		return mustPoly(t, coeffs)
	}

	for trial := 0; trial < 20; trial++ {
		dividend := randomPoly(5 + rng.Intn(5))
		divisor := randomPoly(1 + rng.Intn(3))

		quotient, remainder, err := dividend.Div(divisor)
		if err != nil {
			t.Fatalf("Div failed: %v", err)
		}
		if !remainder.IsZero() && remainder.Degree() >= divisor.Degree() {
			t.Fatalf("remainder degree %d not < divisor degree %d", remainder.Degree(), divisor.Degree())
		}

		product, err := quotient.Mul(divisor)
		if err != nil {
			t.Fatalf("Mul failed: %v", err)
		}
		reconstructed, err := product.Add(remainder)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if !reconstructed.IsEqual(dividend) {
			t.Errorf("quotient*divisor + remainder = %s, want %s", reconstructed, dividend)
		}
	}
}

func TestDivByZeroFails(t *testing.T) {
	field := testField97(t)
	dividend := mustPoly(t, []*FieldElement{fe(field, 1)})
	zero := mustPoly(t, []*FieldElement{fe(field, 0)})
	if _, _, err := dividend.Div(zero); err == nil {
		t.Fatal("Div by zero polynomial should fail")
	}
}

func TestSafeDivRejectsNonZeroRemainder(t *testing.T) {
	field := testField97(t)
	dividend := mustPoly(t, []*FieldElement{fe(field, 1), fe(field, 1)}) // x + 1
	divisor := mustPoly(t, []*FieldElement{fe(field, 0), fe(field, 1)}) // x
	if _, err := dividend.SafeDiv(divisor); err == nil {
		t.Fatal("SafeDiv should fail on a nonzero remainder")
	}
}

// TestLagrangeReconstruction seeds spec.md E6: 32 points on the subgroup
// generated by generator(32), random ys; evaluation at each x_i recovers
// y_i (invariant 5).
func TestLagrangeReconstruction(t *testing.T) {
	p, _ := new(big.Int).SetString("1", 10)
	shift := new(big.Int).Lsh(big.NewInt(407), 119)
	p.Add(p, shift)
	g, _ := new(big.Int).SetString("85408008396924667383611388730472331217", 10)
	field, err := NewField(p, g)
	if err != nil {
		t.Fatalf("NewField failed: %v", err)
	}

	omega, err := field.Generator(32)
	if err != nil {
		t.Fatalf("Generator(32) failed: %v", err)
	}

	xs := make([]*FieldElement, 32)
	ys := make([]*FieldElement, 32)
	rng := rand.New(rand.NewSource(42))
	current := field.One()
	for i := 0; i < 32; i++ {
		xs[i] = current
		ys[i] = field.NewElementFromInt64(int64(rng.Intn(1_000_000)))
		current = current.Mul(omega)
	}

	poly, err := Lagrange(field, xs, ys)
	if err != nil {
		t.Fatalf("Lagrange failed: %v", err)
	}

	for i := range xs {
		got := poly.Eval(xs[i])
		if !got.Equal(ys[i]) {
			t.Errorf("poly.Eval(xs[%d]) = %s, want %s", i, got, ys[i])
		}
	}
}

func TestLagrangeRejectsDuplicateXs(t *testing.T) {
	field := testField97(t)
	xs := []*FieldElement{fe(field, 1), fe(field, 1)}
	ys := []*FieldElement{fe(field, 2), fe(field, 3)}
	if _, err := Lagrange(field, xs, ys); err == nil {
		t.Fatal("Lagrange should reject duplicate x-coordinates")
	}
}

func TestColinearitySingle(t *testing.T) {
	field := testField97(t)

	t.Run("colinear points", func(t *testing.T) {
		// y = 2x + 1
		xs := []*FieldElement{fe(field, 0), fe(field, 1), fe(field, 2)}
		ys := []*FieldElement{fe(field, 1), fe(field, 3), fe(field, 5)}
		ok, err := TestColinearity(field, xs, ys)
		if err != nil {
			t.Fatalf("TestColinearity failed: %v", err)
		}
		if !ok {
			t.Error("expected colinear points to pass")
		}
	})

	t.Run("non-colinear points", func(t *testing.T) {
		xs := []*FieldElement{fe(field, 0), fe(field, 1), fe(field, 2)}
		ys := []*FieldElement{fe(field, 1), fe(field, 3), fe(field, 9)}
		ok, err := TestColinearity(field, xs, ys)
		if err != nil {
			t.Fatalf("TestColinearity failed: %v", err)
		}
		if ok {
			t.Error("expected non-colinear points to fail")
		}
	})
}

func TestColinearityBatchMatchesSingle(t *testing.T) {
	field := testField97(t)

	xsBatch := [][]*FieldElement{
		{fe(field, 0), fe(field, 1), fe(field, 2)},
		{fe(field, 3), fe(field, 4), fe(field, 5)},
	}
	ysBatch := [][]*FieldElement{
		{fe(field, 1), fe(field, 3), fe(field, 5)},  // colinear: y = 2x+1
		{fe(field, 10), fe(field, 3), fe(field, 50)}, // not colinear
	}

	batchOK, err := TestColinearityBatch(field, xsBatch, ysBatch)
	if err != nil {
		t.Fatalf("TestColinearityBatch failed: %v", err)
	}
	if batchOK {
		t.Fatal("batch should fail since the second triple is not colinear")
	}

	onlyFirst, err := TestColinearityBatch(field, xsBatch[:1], ysBatch[:1])
	if err != nil {
		t.Fatalf("TestColinearityBatch failed: %v", err)
	}
	if !onlyFirst {
		t.Error("batch over only the colinear triple should pass")
	}
}

func TestComposeHornerShape(t *testing.T) {
	field := testField97(t)
	// p(x) = x^2 + 1, q(x) = x + 1 => p(q(x)) = (x+1)^2 + 1 = x^2+2x+2
	p := mustPoly(t, []*FieldElement{fe(field, 1), fe(field, 0), fe(field, 1)})
	q := mustPoly(t, []*FieldElement{fe(field, 1), fe(field, 1)})

	composed, err := p.Compose(q)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	want := mustPoly(t, []*FieldElement{fe(field, 2), fe(field, 2), fe(field, 1)})
	if !composed.IsEqual(want) {
		t.Errorf("Compose() = %s, want %s", composed, want)
	}
}

func TestTrimAndIsZero(t *testing.T) {
	field := testField97(t)
	p := mustPoly(t, []*FieldElement{fe(field, 0), fe(field, 0), fe(field, 0)})
	if !p.IsZero() {
		t.Error("all-zero coefficients should produce the zero polynomial")
	}
	if p.Degree() != 0 {
		t.Errorf("zero polynomial degree = %d, want 0", p.Degree())
	}

	padded := mustPoly(t, []*FieldElement{fe(field, 3), fe(field, 0), fe(field, 0)})
	if padded.Degree() != 0 {
		t.Errorf("trailing-zero-padded degree = %d, want 0", padded.Degree())
	}
}
