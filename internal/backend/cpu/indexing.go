package cpu

import (
	"fmt"
	"math"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// IndexSelect gathers rows of a 2D tensor: (N, W) → (len(rows), W).
func (cpu *CPUBackend) IndexSelect(x *tensor.RawTensor, rows []int) *tensor.RawTensor {
	n, w := check2D("indexselect", x)
	if len(rows) == 0 {
		panic("indexselect: at least one row index required")
	}

	result, err := tensor.NewRaw(tensor.Shape{len(rows), w}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("indexselect: %v", err))
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	for i, r := range rows {
		if r < 0 || r >= n {
			panic(fmt.Sprintf("indexselect: row %d out of range [0, %d)", r, n))
		}
		copy(dst[i*w:(i+1)*w], src[r*w:(r+1)*w])
	}

	return result
}

// IndexCopy writes the rows of src into x at the given row indices, in
// place. src must have shape (len(rows), W) matching x's width.
func (cpu *CPUBackend) IndexCopy(x *tensor.RawTensor, rows []int, src *tensor.RawTensor) {
	n, w := check2D("indexcopy", x)
	sn, sw := check2D("indexcopy", src)
	if sw != w {
		panic(fmt.Sprintf("indexcopy: width mismatch: dst %d, src %d", w, sw))
	}
	if sn != len(rows) {
		panic(fmt.Sprintf("indexcopy: src has %d rows, expected %d", sn, len(rows)))
	}

	dst := x.AsFloat32()
	sv := src.AsFloat32()
	for i, r := range rows {
		if r < 0 || r >= n {
			panic(fmt.Sprintf("indexcopy: row %d out of range [0, %d)", r, n))
		}
		copy(dst[r*w:(r+1)*w], sv[i*w:(i+1)*w])
	}
}

// SegmentSum sums the rows of a 2D tensor into `segments` output rows,
// routing row i to output row index[i]. Empty segments stay zero, the
// additive identity.
func (cpu *CPUBackend) SegmentSum(x *tensor.RawTensor, index []int, segments int) *tensor.RawTensor {
	n, w := check2D("segmentsum", x)
	if len(index) != n {
		panic(fmt.Sprintf("segmentsum: index has %d entries, expected %d", len(index), n))
	}

	result, err := tensor.NewRaw(tensor.Shape{segments, w}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("segmentsum: %v", err))
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	for i, seg := range index {
		if seg < 0 || seg >= segments {
			panic(fmt.Sprintf("segmentsum: segment %d out of range [0, %d)", seg, segments))
		}
		row := src[i*w : (i+1)*w]
		out := dst[seg*w : (seg+1)*w]
		for j := range out {
			out[j] += row[j]
		}
	}

	return result
}

// SegmentMax takes the element-wise maximum of the rows routed to each
// segment. Accumulation seeds with -Inf; segments that receive no rows are
// rewritten to zero before returning, so the identity for an empty segment
// is a zero row and no sentinel ever escapes.
func (cpu *CPUBackend) SegmentMax(x *tensor.RawTensor, index []int, segments int) *tensor.RawTensor {
	n, w := check2D("segmentmax", x)
	if len(index) != n {
		panic(fmt.Sprintf("segmentmax: index has %d entries, expected %d", len(index), n))
	}

	result, err := tensor.NewRaw(tensor.Shape{segments, w}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("segmentmax: %v", err))
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	negInf := float32(math.Inf(-1))
	for i := range dst {
		dst[i] = negInf
	}

	touched := make([]bool, segments)
	for i, seg := range index {
		if seg < 0 || seg >= segments {
			panic(fmt.Sprintf("segmentmax: segment %d out of range [0, %d)", seg, segments))
		}
		touched[seg] = true
		row := src[i*w : (i+1)*w]
		out := dst[seg*w : (seg+1)*w]
		for j := range out {
			if row[j] > out[j] {
				out[j] = row[j]
			}
		}
	}

	for seg, t := range touched {
		if !t {
			out := dst[seg*w : (seg+1)*w]
			for j := range out {
				out[j] = 0
			}
		}
	}

	return result
}

// check2D validates a 2D float32 tensor and returns its dimensions.
func check2D(op string, x *tensor.RawTensor) (n, w int) {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("%s: expected 2D tensor, got %v", op, shape))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32 supported)", op, x.DType()))
	}
	return shape[0], shape[1]
}
