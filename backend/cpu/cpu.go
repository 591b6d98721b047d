// Copyright 2025 Timewire ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure-Go CPU compute backend.
//
// The CPU backend implements every tensor operation the timing models
// need without cgo or external BLAS, so it runs anywhere Go runs.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import (
	internalcpu "github.com/timewire-ml/timewire/internal/backend/cpu"
	"github.com/timewire-ml/timewire/tensor"
)

// Backend is the CPU compute backend.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend satisfies the tensor.Backend interface.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
func New() *Backend {
	return internalcpu.New()
}
