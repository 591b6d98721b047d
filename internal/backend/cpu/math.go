package cpu

import (
	"fmt"
	"math"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("mulscalar", scalar)
	return cpu.unaryOp("mulscalar", x, func(v float32) float32 { return v * float32(s) })
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("addscalar", scalar)
	return cpu.unaryOp("addscalar", x, func(v float32) float32 { return v + float32(s) })
}

// Exp computes the element-wise exponential.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("exp", x, func(v float32) float32 {
		return float32(math.Exp(float64(v)))
	})
}

// Sqrt computes the element-wise square root.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sqrt", x, func(v float32) float32 {
		return float32(math.Sqrt(float64(v)))
	})
}

// Sigmoid computes the element-wise logistic function.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sigmoid", x, func(v float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(float64(-v))))
	})
}

// LeakyReLU computes the element-wise leaky rectifier:
// f(x) = x for x >= 0, negSlope*x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, negSlope float64) *tensor.RawTensor {
	slope := float32(negSlope)
	return cpu.unaryOp("leakyrelu", x, func(v float32) float32 {
		if v >= 0 {
			return v
		}
		return slope * v
	})
}

// unaryOp applies an element-wise function to a float32 tensor.
func (cpu *CPUBackend) unaryOp(op string, x *tensor.RawTensor, f func(v float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32 supported)", op, x.DType()))
	}

	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	for i := range dst {
		dst[i] = f(src[i])
	}
	return result
}

// toFloat64 normalizes a scalar argument to float64.
func toFloat64(op string, scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	case int32:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", op, scalar))
	}
}
