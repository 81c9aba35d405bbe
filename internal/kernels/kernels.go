// Package kernels provides cost functions for quantum kernel methods:
// kernel matrices, polarity, kernel-target alignment and task-model
// alignment. The kernel itself is a caller-supplied function, typically
// backed by circuit execution.
package kernels

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Kernel maps two datapoints to a kernel value.
type Kernel func(x1, x2 []float64) float64

// SquareKernelMatrix computes the symmetric kernel Gram matrix of the
// datapoints. With assumeNormalized set, diagonal entries are taken to be
// 1 without evaluating the kernel.
func SquareKernelMatrix(x [][]float64, kernel Kernel, assumeNormalized bool) *mat.SymDense {
	n := len(x)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if assumeNormalized {
			k.SetSym(i, i, 1)
		} else {
			k.SetSym(i, i, kernel(x[i], x[i]))
		}
		for j := i + 1; j < n; j++ {
			k.SetSym(i, j, kernel(x[i], x[j]))
		}
	}
	return k
}

// FrobeniusInnerProduct computes <A, B>_F = sum_ij A_ij B_ij, optionally
// normalized by the Frobenius norms of both matrices.
func FrobeniusInnerProduct(a, b mat.Matrix, normalize bool) float64 {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		panic(fmt.Sprintf("kernels: dimension mismatch %dx%d vs %dx%d", ra, ca, rb, cb))
	}
	inner := 0.0
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			inner += a.At(i, j) * b.At(i, j)
		}
	}
	if !normalize {
		return inner
	}
	return inner / (mat.Norm(a, 2) * mat.Norm(b, 2))
}

// rescaleLabels divides each +1/-1 label by its class size, compensating
// for unbalanced datasets.
func rescaleLabels(y []float64) []float64 {
	nplus := 0
	for _, v := range y {
		if v == 1 {
			nplus++
		}
	}
	nminus := len(y) - nplus
	out := make([]float64, len(y))
	for i, v := range y {
		if v == 1 {
			out[i] = v / float64(nplus)
		} else {
			out[i] = v / float64(nminus)
		}
	}
	return out
}

// Polarity computes the polarity of a kernel on a labelled dataset:
//
//	P(k) = sum_ij y_i y_j k(x_i, x_j)
//
// Labels are assumed to be -1 or 1. With rescaleClassLabels set, each
// label is divided by its class size to compensate for unbalanced
// datasets. With normalize set, the result equals the target alignment.
func Polarity(x [][]float64, y []float64, kernel Kernel, assumeNormalized, rescaleClassLabels, normalize bool) float64 {
	k := SquareKernelMatrix(x, kernel, assumeNormalized)

	labels := y
	if rescaleClassLabels {
		labels = rescaleLabels(y)
	}

	n := len(labels)
	t := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			t.SetSym(i, j, labels[i]*labels[j])
		}
	}

	return FrobeniusInnerProduct(k, t, normalize)
}

// TargetAlignment computes the kernel-target alignment: the normalized
// polarity.
func TargetAlignment(x [][]float64, y []float64, kernel Kernel, assumeNormalized, rescaleClassLabels bool) float64 {
	return Polarity(x, y, kernel, assumeNormalized, rescaleClassLabels, true)
}

// TaskModelAlignment measures how much of the target function is captured
// by the kernel's first n eigencomponents:
//
//	C(n) = sum_{k<n} w_k^2 l_k / sum_k w_k^2 l_k
//
// taskWeights and kernelEvals are aligned by eigenvalue index.
func TaskModelAlignment(n int, taskWeights, kernelEvals []float64) (float64, error) {
	if len(taskWeights) != len(kernelEvals) {
		return 0, fmt.Errorf("kernels: %d task weights but %d kernel eigenvalues", len(taskWeights), len(kernelEvals))
	}
	if n < 0 || n > len(taskWeights) {
		return 0, fmt.Errorf("kernels: component count %d out of range [0, %d]", n, len(taskWeights))
	}
	numerator := floats.Dot(taskWeights[:n], kernelEvals[:n])
	denominator := floats.Dot(taskWeights, kernelEvals)
	if denominator == 0 {
		return 0, fmt.Errorf("kernels: all weighted eigenvalues are zero")
	}
	return numerator / denominator, nil
}

// MitigateDepolarizingNoise corrects a noisy kernel matrix under a global
// depolarizing noise model on numWires qubits, estimating the noise rate
// from the average deviation of the diagonal from 1.
func MitigateDepolarizingNoise(k *mat.SymDense, numWires int) *mat.SymDense {
	n, _ := k.Dims()
	diagSum := 0.0
	for i := 0; i < n; i++ {
		diagSum += k.At(i, i)
	}
	dim := math.Exp2(float64(numWires))
	lambda := (1 - diagSum/float64(n)) * dim / (dim - 1)
	if lambda >= 1 {
		return k
	}
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := (k.At(i, j) - lambda/dim) / (1 - lambda)
			out.SetSym(i, j, v)
		}
	}
	return out
}
