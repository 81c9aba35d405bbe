package kernels_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/kernels"
)

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// TestSquareKernelMatrix builds the Gram matrix of a linear kernel.
func TestSquareKernelMatrix(t *testing.T) {
	x := [][]float64{{1, 0}, {0, 2}, {1, 1}}
	k := kernels.SquareKernelMatrix(x, dot, false)

	n, _ := k.Dims()
	if n != 3 {
		t.Fatalf("matrix size = %d, want 3", n)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := dot(x[i], x[j])
			if math.Abs(k.At(i, j)-want) > 1e-12 {
				t.Errorf("K[%d][%d] = %f, want %f", i, j, k.At(i, j), want)
			}
		}
	}

	// assumeNormalized pins the diagonal to 1 without evaluating.
	kn := kernels.SquareKernelMatrix(x, dot, true)
	for i := 0; i < 3; i++ {
		if kn.At(i, i) != 1 {
			t.Errorf("normalized diagonal K[%d][%d] = %f, want 1", i, i, kn.At(i, i))
		}
	}
}

// TestFrobeniusInnerProduct checks the raw and normalized inner product.
func TestFrobeniusInnerProduct(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{5, 6, 7, 8})

	got := kernels.FrobeniusInnerProduct(a, b, false)
	if math.Abs(got-70) > 1e-12 {
		t.Errorf("inner product = %f, want 70", got)
	}

	// Normalized self inner product is 1.
	if got := kernels.FrobeniusInnerProduct(a, a, true); math.Abs(got-1) > 1e-12 {
		t.Errorf("normalized self inner product = %f, want 1", got)
	}
}

// TestTargetAlignment_PerfectKernel reaches alignment 1 when the kernel
// reproduces the label structure exactly.
func TestTargetAlignment_PerfectKernel(t *testing.T) {
	// One-dimensional datapoints equal to their labels: the linear
	// kernel Gram matrix is exactly the label outer product.
	x := [][]float64{{1}, {-1}, {1}, {-1}}
	y := []float64{1, -1, 1, -1}

	got := kernels.TargetAlignment(x, y, dot, false, false)
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("alignment = %f, want 1", got)
	}
}

// TestPolarity_RescaledLabels compensates for class imbalance.
func TestPolarity_RescaledLabels(t *testing.T) {
	x := [][]float64{{1}, {1}, {-1}}
	y := []float64{1, 1, -1}

	// With rescaling, labels become [1/2, 1/2, -1], and with the linear
	// kernel K = y y^T the polarity is sum_ij yi' yj' yi yj = 4.
	got := kernels.Polarity(x, y, dot, false, true, false)
	if math.Abs(got-4) > 1e-12 {
		t.Errorf("rescaled polarity = %f, want 4", got)
	}
}

// TestTaskModelAlignment checks the cumulative eigencomponent ratio.
func TestTaskModelAlignment(t *testing.T) {
	weights := []float64{2, 1, 1}
	evals := []float64{3, 1, 0}

	got, err := kernels.TaskModelAlignment(1, weights, evals)
	if err != nil {
		t.Fatalf("TaskModelAlignment: %v", err)
	}
	// (2*3) / (2*3 + 1*1 + 1*0) = 6/7.
	if math.Abs(got-6.0/7.0) > 1e-12 {
		t.Errorf("alignment = %f, want %f", got, 6.0/7.0)
	}

	if _, err := kernels.TaskModelAlignment(1, weights, evals[:2]); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := kernels.TaskModelAlignment(5, weights, evals); err == nil {
		t.Error("expected error for out-of-range component count")
	}
}

// TestMitigateDepolarizingNoise recovers a clean kernel matrix from a
// globally depolarized one.
func TestMitigateDepolarizingNoise(t *testing.T) {
	const numWires = 2
	dim := math.Exp2(numWires)
	lambda := 0.3

	clean := mat.NewSymDense(2, []float64{
		1, 0.4,
		0.4, 1,
	})
	noisy := mat.NewSymDense(2, nil)
	for i := 0; i < 2; i++ {
		for j := i; j < 2; j++ {
			noisy.SetSym(i, j, (1-lambda)*clean.At(i, j)+lambda/dim)
		}
	}

	got := kernels.MitigateDepolarizingNoise(noisy, numWires)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(got.At(i, j)-clean.At(i, j)) > 1e-10 {
				t.Errorf("mitigated[%d][%d] = %f, want %f", i, j, got.At(i, j), clean.At(i, j))
			}
		}
	}
}
