package cpu

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v", aShape, bShape))
	}
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("matmul: unsupported dtype %s/%s (only float32 supported)", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]

	result, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}

	matmulFloat32(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	return result
}

// BatchMatMul performs batched matrix multiplication for 3D tensors:
// (B, M, K) @ (B, K, N) → (B, M, N).
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 3 || len(bShape) != 3 {
		panic(fmt.Sprintf("batchmatmul: expected 3D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[0] != bShape[0] {
		panic(fmt.Sprintf("batchmatmul: batch dimensions do not match: %v @ %v", aShape, bShape))
	}
	if aShape[2] != bShape[1] {
		panic(fmt.Sprintf("batchmatmul: inner dimensions do not match: %v @ %v", aShape, bShape))
	}
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("batchmatmul: unsupported dtype %s/%s (only float32 supported)", a.DType(), b.DType()))
	}

	batch, m, k, n := aShape[0], aShape[1], aShape[2], bShape[2]

	result, err := tensor.NewRaw(tensor.Shape{batch, m, n}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("batchmatmul: %v", err))
	}

	av := a.AsFloat32()
	bv := b.AsFloat32()
	dst := result.AsFloat32()
	for i := 0; i < batch; i++ {
		matmulFloat32(dst[i*m*n:(i+1)*m*n], av[i*m*k:(i+1)*m*k], bv[i*k*n:(i+1)*k*n], m, k, n)
	}

	return result
}

// matmulFloat32 computes dst = a @ b with the ikj loop order for cache
// locality on row-major data.
func matmulFloat32(dst, a, b []float32, m, k, n int) {
	for i := 0; i < m; i++ {
		dstRow := dst[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			aip := a[i*k+p]
			if aip == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			for j := range dstRow {
				dstRow[j] += aip * bRow[j]
			}
		}
	}
}
