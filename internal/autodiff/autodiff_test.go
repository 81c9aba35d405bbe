package autodiff_test

import (
	"errors"
	"math"
	"testing"

	"github.com/varq-ml/varq/internal/autodiff"
)

// Helper to check float equality with tolerance.
func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestAdd_Broadcast tests scalar broadcasting in elementwise addition.
func TestAdd_Broadcast(t *testing.T) {
	x := autodiff.Scalar(2)
	v := autodiff.Leaf([]float64{1, 2, 3})

	y := autodiff.Add(x, v)
	want := []float64{3, 4, 5}
	for i, w := range want {
		if !almost(y.At(i), w) {
			t.Errorf("Add broadcast: element %d = %f, want %f", i, y.At(i), w)
		}
	}

	// Gradient of the broadcast scalar reduces over the vector.
	grads, err := autodiff.Grad(autodiff.Sum(y), []*autodiff.Value{x, v})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	if !almost(grads[0].At(0), 3) {
		t.Errorf("scalar gradient = %f, want 3", grads[0].At(0))
	}
	for i := 0; i < 3; i++ {
		if !almost(grads[1].At(i), 1) {
			t.Errorf("vector gradient element %d = %f, want 1", i, grads[1].At(i))
		}
	}
}

// TestMul_Gradient tests the product rule.
func TestMul_Gradient(t *testing.T) {
	x := autodiff.Scalar(3)
	y := autodiff.Mul(x, x)

	grads, err := autodiff.Grad(y, []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	// d(x^2)/dx = 2x = 6
	if !almost(grads[0].At(0), 6) {
		t.Errorf("gradient = %f, want 6", grads[0].At(0))
	}
}

// TestTrig_Gradients tests sin and cos derivatives.
func TestTrig_Gradients(t *testing.T) {
	x := autodiff.Scalar(0.5)

	gs, err := autodiff.Grad(autodiff.Sin(x), []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad(sin): %v", err)
	}
	if !almost(gs[0].At(0), math.Cos(0.5)) {
		t.Errorf("d sin = %f, want %f", gs[0].At(0), math.Cos(0.5))
	}

	gc, err := autodiff.Grad(autodiff.Cos(x), []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad(cos): %v", err)
	}
	if !almost(gc[0].At(0), -math.Sin(0.5)) {
		t.Errorf("d cos = %f, want %f", gc[0].At(0), -math.Sin(0.5))
	}
}

// TestDot_Gradient tests the inner product and its gradients.
func TestDot_Gradient(t *testing.T) {
	a := autodiff.Leaf([]float64{1, 2})
	b := autodiff.Leaf([]float64{3, 4})

	y := autodiff.Dot(a, b)
	if !almost(y.At(0), 11) {
		t.Fatalf("dot = %f, want 11", y.At(0))
	}

	grads, err := autodiff.Grad(y, []*autodiff.Value{a, b})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	wantA := []float64{3, 4}
	wantB := []float64{1, 2}
	for i := 0; i < 2; i++ {
		if !almost(grads[0].At(i), wantA[i]) {
			t.Errorf("da[%d] = %f, want %f", i, grads[0].At(i), wantA[i])
		}
		if !almost(grads[1].At(i), wantB[i]) {
			t.Errorf("db[%d] = %f, want %f", i, grads[1].At(i), wantB[i])
		}
	}
}

// TestTake_Gradient tests element extraction and the scatter backward.
func TestTake_Gradient(t *testing.T) {
	x := autodiff.Leaf([]float64{1, 2, 3})
	y := autodiff.Take(x, 1)
	if !almost(y.At(0), 2) {
		t.Fatalf("take = %f, want 2", y.At(0))
	}

	grads, err := autodiff.Grad(y, []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	want := []float64{0, 1, 0}
	for i, w := range want {
		if !almost(grads[0].At(i), w) {
			t.Errorf("gradient element %d = %f, want %f", i, grads[0].At(i), w)
		}
	}
}

// TestHigherOrder differentiates x^3 three times.
func TestHigherOrder(t *testing.T) {
	x := autodiff.Scalar(0.3)
	y := autodiff.Mul(x, autodiff.Mul(x, x))

	d1, err := autodiff.Grad(y, []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("first order: %v", err)
	}
	if !almost(d1[0].At(0), 3*0.3*0.3) {
		t.Errorf("d1 = %f, want %f", d1[0].At(0), 3*0.3*0.3)
	}

	d2, err := autodiff.Grad(d1[0], []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("second order: %v", err)
	}
	if !almost(d2[0].At(0), 6*0.3) {
		t.Errorf("d2 = %f, want %f", d2[0].At(0), 6*0.3)
	}

	d3, err := autodiff.Grad(d2[0], []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("third order: %v", err)
	}
	if !almost(d3[0].At(0), 6) {
		t.Errorf("d3 = %f, want 6", d3[0].At(0))
	}
}

// TestGrad_NoPath verifies the missing-dependency error.
func TestGrad_NoPath(t *testing.T) {
	a := autodiff.Scalar(1)
	x := autodiff.Scalar(2)
	y := autodiff.Mul(a, a)

	_, err := autodiff.Grad(y, []*autodiff.Value{x})
	if !errors.Is(err, autodiff.ErrNoGradientPath) {
		t.Errorf("got %v, want ErrNoGradientPath", err)
	}
}

// TestGrad_NonScalar rejects vector outputs.
func TestGrad_NonScalar(t *testing.T) {
	x := autodiff.Leaf([]float64{1, 2})
	if _, err := autodiff.Grad(x, []*autodiff.Value{x}); err == nil {
		t.Error("expected error for non-scalar output")
	}
}

// TestDetach cuts the graph link.
func TestDetach(t *testing.T) {
	x := autodiff.Scalar(2)
	d := autodiff.Mul(x, x).Detach()
	y := autodiff.Mul(d, d)

	if !almost(y.At(0), 16) {
		t.Errorf("forward value = %f, want 16", y.At(0))
	}
	_, err := autodiff.Grad(y, []*autodiff.Value{x})
	if !errors.Is(err, autodiff.ErrNoGradientPath) {
		t.Errorf("got %v, want ErrNoGradientPath after detach", err)
	}
}

// TestCustomOp registers an opaque primitive with a side-channel rule.
func TestCustomOp(t *testing.T) {
	x := autodiff.Scalar(2)
	outs := autodiff.NewCustom(
		[]*autodiff.Value{x},
		[][]float64{{7}, {1, 2}},
		func(outputGrads []*autodiff.Value) ([]*autodiff.Value, error) {
			// Pretend d out0/dx = 3 and out1 contributes its sum.
			g := autodiff.Add(autodiff.Scale(outputGrads[0], 3), autodiff.Sum(outputGrads[1]))
			return []*autodiff.Value{g}, nil
		},
	)
	if len(outs) != 2 || outs[0].Len() != 1 || outs[1].Len() != 2 {
		t.Fatalf("unexpected output shapes")
	}

	// Differentiate out0 alone: the second output's adjoint is zero-filled.
	grads, err := autodiff.Grad(outs[0], []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	if !almost(grads[0].At(0), 3) {
		t.Errorf("gradient = %f, want 3", grads[0].At(0))
	}

	// Differentiate a reduction over both outputs.
	y := autodiff.Add(outs[0], autodiff.Sum(outs[1]))
	grads, err = autodiff.Grad(y, []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	if !almost(grads[0].At(0), 5) {
		t.Errorf("gradient = %f, want 5", grads[0].At(0))
	}
}

// TestCustomOp_Error propagates rule failures out of Grad.
func TestCustomOp_Error(t *testing.T) {
	wantErr := errors.New("device unavailable")
	x := autodiff.Scalar(1)
	outs := autodiff.NewCustom(
		[]*autodiff.Value{x},
		[][]float64{{0}},
		func([]*autodiff.Value) ([]*autodiff.Value, error) { return nil, wantErr },
	)
	_, err := autodiff.Grad(outs[0], []*autodiff.Value{x})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want wrapped rule error", err)
	}
}

// TestOffsetScale_Gradients tests the constant-shift and constant-scale ops.
func TestOffsetScale_Gradients(t *testing.T) {
	x := autodiff.Scalar(1.5)
	y := autodiff.Scale(autodiff.Offset(x, 2), 3) // 3(x+2)

	if !almost(y.At(0), 10.5) {
		t.Errorf("forward = %f, want 10.5", y.At(0))
	}
	grads, err := autodiff.Grad(y, []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	if !almost(grads[0].At(0), 3) {
		t.Errorf("gradient = %f, want 3", grads[0].At(0))
	}
}

// TestBroadcastSum round-trips scalar to vector and back.
func TestBroadcastSum(t *testing.T) {
	x := autodiff.Scalar(2)
	y := autodiff.Sum(autodiff.Broadcast(x, 4))
	if !almost(y.At(0), 8) {
		t.Errorf("forward = %f, want 8", y.At(0))
	}
	grads, err := autodiff.Grad(y, []*autodiff.Value{x})
	if err != nil {
		t.Fatalf("Grad: %v", err)
	}
	if !almost(grads[0].At(0), 4) {
		t.Errorf("gradient = %f, want 4", grads[0].At(0))
	}
}
