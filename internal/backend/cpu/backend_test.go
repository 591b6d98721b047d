package cpu

import (
	"math"
	"testing"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// rawF32 creates a float32 raw tensor from a slice.
func rawF32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

// assertF32 compares a raw tensor's contents against expected values.
func assertF32(t *testing.T, result *tensor.RawTensor, expected []float32, msg string) {
	t.Helper()
	data := result.AsFloat32()
	if len(data) != len(expected) {
		t.Fatalf("%s: got %d elements, want %d", msg, len(data), len(expected))
	}
	for i, exp := range expected {
		if math.Abs(float64(data[i]-exp)) > 1e-5 {
			t.Errorf("%s: result[%d] = %f, want %f", msg, i, data[i], exp)
		}
	}
}

func TestAddSameShape(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawF32(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	assertF32(t, backend.Add(a, b), []float32{11, 22, 33, 44}, "Add")
}

func TestAddBroadcastRow(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawF32(t, []float32{10, 20, 30}, tensor.Shape{1, 3})

	assertF32(t, backend.Add(a, b), []float32{11, 22, 33, 14, 25, 36}, "Add broadcast")
}

func TestSubMulDiv(t *testing.T) {
	backend := New()

	a := rawF32(t, []float32{4, 9, 16, 25}, tensor.Shape{4})
	b := rawF32(t, []float32{2, 3, 4, 5}, tensor.Shape{4})

	assertF32(t, backend.Sub(a, b), []float32{2, 6, 12, 20}, "Sub")
	assertF32(t, backend.Mul(a, b), []float32{8, 27, 64, 125}, "Mul")
	assertF32(t, backend.Div(a, b), []float32{2, 3, 4, 5}, "Div")
}

func TestScalarOps(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3}, tensor.Shape{3})

	assertF32(t, backend.MulScalar(x, 2.0), []float32{2, 4, 6}, "MulScalar")
	assertF32(t, backend.AddScalar(x, -1.0), []float32{0, 1, 2}, "AddScalar")
}

func TestSigmoid(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{0, 100, -100}, tensor.Shape{3})
	result := backend.Sigmoid(x).AsFloat32()

	if math.Abs(float64(result[0]-0.5)) > 1e-6 {
		t.Errorf("Sigmoid(0) = %f, want 0.5", result[0])
	}
	if result[1] < 0.999 {
		t.Errorf("Sigmoid(100) = %f, want ~1", result[1])
	}
	if result[2] > 0.001 {
		t.Errorf("Sigmoid(-100) = %f, want ~0", result[2])
	}
}

func TestLeakyReLU(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})
	assertF32(t, backend.LeakyReLU(x, 0.2), []float32{-0.4, -0.1, 0, 0.5, 2}, "LeakyReLU")
}

func TestExpSqrt(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{0, 1}, tensor.Shape{2})
	exp := backend.Exp(x).AsFloat32()
	if math.Abs(float64(exp[0]-1)) > 1e-6 || math.Abs(float64(exp[1]-2.7182817)) > 1e-4 {
		t.Errorf("Exp = %v, want [1, e]", exp)
	}

	y := rawF32(t, []float32{4, 9}, tensor.Shape{2})
	assertF32(t, backend.Sqrt(y), []float32{2, 3}, "Sqrt")
}

func TestSumDim(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	rows := backend.SumDim(x, 1, false)
	if !rows.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("SumDim(1) shape = %v, want [2]", rows.Shape())
	}
	assertF32(t, rows, []float32{6, 15}, "SumDim dim 1")

	cols := backend.SumDim(x, 0, true)
	if !cols.Shape().Equal(tensor.Shape{1, 3}) {
		t.Fatalf("SumDim(0, keep) shape = %v, want [1, 3]", cols.Shape())
	}
	assertF32(t, cols, []float32{5, 7, 9}, "SumDim dim 0")
}

func TestMeanDim(t *testing.T) {
	backend := New()

	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	assertF32(t, backend.MeanDim(x, 0, false), []float32{2.5, 3.5, 4.5}, "MeanDim dim 0")
}
