// Package cpu implements the pure-Go CPU backend for timewire tensors.
package cpu

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b, func(x, y float32) float32 { return x / y })
}

// binaryOp applies an element-wise binary function with broadcasting.
// Same-shape inputs take the vectorized fast path; mismatched shapes fall
// back to stride-based index mapping.
func (cpu *CPUBackend) binaryOp(op string, a, b *tensor.RawTensor, f func(x, y float32) float32) *tensor.RawTensor {
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: unsupported dtype %s/%s (only float32 supported)", op, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}

	dst := result.AsFloat32()

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		// Fast path: element-aligned
		av := a.AsFloat32()
		bv := b.AsFloat32()
		for i := range dst {
			dst[i] = f(av[i], bv[i])
		}
		return result
	}

	// Slow path: walk the output index space and map back through
	// broadcast strides (stride 0 on size-1 dimensions).
	av := a.AsFloat32()
	bv := b.AsFloat32()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)

	idx := make([]int, len(outShape))
	for i := range dst {
		aOff, bOff := 0, 0
		for d := range idx {
			aOff += idx[d] * aStrides[d]
			bOff += idx[d] * bStrides[d]
		}
		dst[i] = f(av[aOff], bv[bOff])
		incrementIndex(idx, outShape)
	}

	return result
}

// broadcastStrides computes input strides aligned to the (longer) output
// shape, with stride 0 wherever the input dimension is broadcast.
func broadcastStrides(in, out tensor.Shape) []int {
	inStrides := in.ComputeStrides()
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	for d := range out {
		if d < offset {
			continue // missing leading dimension, stride 0
		}
		if in[d-offset] == 1 && out[d] != 1 {
			continue // broadcast dimension, stride 0
		}
		strides[d] = inStrides[d-offset]
	}
	return strides
}

// incrementIndex advances a multi-dimensional index in row-major order.
func incrementIndex(idx []int, shape tensor.Shape) {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < shape[d] {
			return
		}
		idx[d] = 0
	}
}
