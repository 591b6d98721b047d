package cpu

import (
	"testing"

	"github.com/timewire-ml/timewire/internal/tensor"
)

func TestReshapeSharesData(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := backend.Reshape(x, tensor.Shape{3, 2})

	if !y.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Reshape shape = %v, want [3, 2]", y.Shape())
	}

	// Reshape is a view over the same buffer.
	x.AsFloat32()[0] = 42
	if y.AsFloat32()[0] != 42 {
		t.Error("Reshape should alias the original buffer")
	}
}

func TestTranspose2D(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := backend.Transpose(x)

	if !y.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape = %v, want [3, 2]", y.Shape())
	}
	assertF32(t, y, []float32{1, 4, 2, 5, 3, 6}, "Transpose")
}

func TestCatDim0(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2}, tensor.Shape{1, 2})
	b := rawF32(t, []float32{3, 4, 5, 6}, tensor.Shape{2, 2})

	result := backend.Cat([]*tensor.RawTensor{a, b}, 0)
	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Cat shape = %v, want [3, 2]", result.Shape())
	}
	assertF32(t, result, []float32{1, 2, 3, 4, 5, 6}, "Cat dim 0")
}

func TestCatDim1(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawF32(t, []float32{5, 6}, tensor.Shape{2, 1})

	result := backend.Cat([]*tensor.RawTensor{a, b}, 1)
	if !result.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Cat shape = %v, want [2, 3]", result.Shape())
	}
	assertF32(t, result, []float32{1, 2, 5, 3, 4, 6}, "Cat dim 1")
}

func TestNarrow(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 4})
	result := backend.Narrow(x, 1, 1, 2)

	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("Narrow shape = %v, want [2, 2]", result.Shape())
	}
	assertF32(t, result, []float32{2, 3, 6, 7}, "Narrow")
}

func TestSplitUneven(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 4})
	parts := backend.Split(x, []int{1, 3}, 1)

	if len(parts) != 2 {
		t.Fatalf("Split returned %d parts, want 2", len(parts))
	}
	assertF32(t, parts[0], []float32{1, 5}, "Split part 0")
	assertF32(t, parts[1], []float32{2, 3, 4, 6, 7, 8}, "Split part 1")
}

func TestSplitBadSizesPanics(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 4})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Split with sizes not summing to the dim should panic")
		}
	}()
	backend.Split(x, []int{1, 2}, 1)
}

func TestRepeatRows(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	result := backend.RepeatRows(x, 3)

	if !result.Shape().Equal(tensor.Shape{6, 2}) {
		t.Fatalf("RepeatRows shape = %v, want [6, 2]", result.Shape())
	}
	// Rows repeat consecutively, not interleaved.
	assertF32(t, result, []float32{1, 2, 1, 2, 1, 2, 3, 4, 3, 4, 3, 4}, "RepeatRows")
}
