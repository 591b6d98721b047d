package cpu

import (
	"testing"

	"github.com/timewire-ml/timewire/internal/tensor"
)

func TestMatMul(t *testing.T) {
	backend := New()

	// [[1, 2], [3, 4]] @ [[5, 6], [7, 8]] = [[19, 22], [43, 50]]
	a := rawF32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawF32(t, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})

	result := backend.MatMul(a, b)
	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("MatMul shape = %v, want [2, 2]", result.Shape())
	}
	assertF32(t, result, []float32{19, 22, 43, 50}, "MatMul")
}

func TestMatMulRectangular(t *testing.T) {
	backend := New()

	// [2, 3] @ [3, 1] = [2, 1]
	a := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawF32(t, []float32{1, 0, -1}, tensor.Shape{3, 1})

	result := backend.MatMul(a, b)
	if !result.Shape().Equal(tensor.Shape{2, 1}) {
		t.Fatalf("MatMul shape = %v, want [2, 1]", result.Shape())
	}
	assertF32(t, result, []float32{-2, -2}, "MatMul rectangular")
}

func TestMatMulShapeMismatchPanics(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawF32(t, []float32{1, 2, 3}, tensor.Shape{3, 1})

	defer func() {
		if r := recover(); r == nil {
			t.Error("MatMul with incompatible shapes should panic")
		}
	}()
	backend.MatMul(a, b)
}

func TestBatchMatMul(t *testing.T) {
	backend := New()

	// Batch 0: [[1, 2]] @ [[3], [4]] = [[11]]
	// Batch 1: [[5, 6]] @ [[7], [8]] = [[83]]
	a := rawF32(t, []float32{1, 2, 5, 6}, tensor.Shape{2, 1, 2})
	b := rawF32(t, []float32{3, 4, 7, 8}, tensor.Shape{2, 2, 1})

	result := backend.BatchMatMul(a, b)
	if !result.Shape().Equal(tensor.Shape{2, 1, 1}) {
		t.Fatalf("BatchMatMul shape = %v, want [2, 1, 1]", result.Shape())
	}
	assertF32(t, result, []float32{11, 83}, "BatchMatMul")
}

func TestBatchMatMulOuterProduct(t *testing.T) {
	backend := New()

	// (M, L, 1) @ (M, 1, L): the attention outer product layout.
	ax := rawF32(t, []float32{1, 2, 3}, tensor.Shape{1, 3, 1})
	ay := rawF32(t, []float32{4, 5, 6}, tensor.Shape{1, 1, 3})

	result := backend.BatchMatMul(ax, ay)
	if !result.Shape().Equal(tensor.Shape{1, 3, 3}) {
		t.Fatalf("outer product shape = %v, want [1, 3, 3]", result.Shape())
	}
	assertF32(t, result, []float32{4, 5, 6, 8, 10, 12, 12, 15, 18}, "outer product")
}
