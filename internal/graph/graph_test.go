package graph

import (
	"testing"

	"github.com/timewire-ml/timewire/internal/backend/cpu"
	"github.com/timewire-ml/timewire/internal/tensor"
)

func TestGraphValidate(t *testing.T) {
	backend := cpu.New()

	g := &Graph[*cpu.CPUBackend]{
		NumNodes: 3,
		NF:       tensor.Randn[float32](tensor.Shape{3, 4}, backend),
		NetOut: EdgeSet[*cpu.CPUBackend]{
			Src: []int{0},
			Dst: []int{1},
			EF:  tensor.Randn[float32](tensor.Shape{1, 2}, backend),
		},
		NetIn: EdgeSet[*cpu.CPUBackend]{
			Src: []int{1},
			Dst: []int{0},
		},
	}
	if err := g.Validate(); err != nil {
		t.Errorf("valid graph rejected: %v", err)
	}
}

func TestGraphValidateMissingNF(t *testing.T) {
	g := &Graph[*cpu.CPUBackend]{NumNodes: 2}
	if err := g.Validate(); err == nil {
		t.Error("graph without node features should be rejected")
	}
}

func TestGraphValidateEdgeOutOfRange(t *testing.T) {
	backend := cpu.New()

	g := &Graph[*cpu.CPUBackend]{
		NumNodes: 2,
		NF:       tensor.Randn[float32](tensor.Shape{2, 4}, backend),
		NetOut: EdgeSet[*cpu.CPUBackend]{
			Src: []int{0},
			Dst: []int{5},
		},
	}
	if err := g.Validate(); err == nil {
		t.Error("edge referencing a missing node should be rejected")
	}
}

func TestGraphValidateEFRowMismatch(t *testing.T) {
	backend := cpu.New()

	g := &Graph[*cpu.CPUBackend]{
		NumNodes: 3,
		NF:       tensor.Randn[float32](tensor.Shape{3, 4}, backend),
		NetOut: EdgeSet[*cpu.CPUBackend]{
			Src: []int{0, 0},
			Dst: []int{1, 2},
			EF:  tensor.Randn[float32](tensor.Shape{1, 2}, backend),
		},
	}
	if err := g.Validate(); err == nil {
		t.Error("edge feature row count mismatch should be rejected")
	}
}

func TestHomographValidate(t *testing.T) {
	backend := cpu.New()

	g := &Homograph[*cpu.CPUBackend]{
		NumNodes: 2,
		Src:      []int{0},
		Dst:      []int{1},
		NF:       tensor.Randn[float32](tensor.Shape{2, 4}, backend),
	}
	if err := g.Validate(); err != nil {
		t.Errorf("valid homograph rejected: %v", err)
	}

	g.Dst = []int{9}
	if err := g.Validate(); err == nil {
		t.Error("homograph edge referencing a missing node should be rejected")
	}
}

func TestRelationString(t *testing.T) {
	tests := []struct {
		rel  Relation
		want string
	}{
		{NetOut, "net_out"},
		{NetIn, "net_in"},
		{CellOut, "cell_out"},
	}
	for _, tt := range tests {
		if got := tt.rel.String(); got != tt.want {
			t.Errorf("Relation(%d).String() = %q, want %q", tt.rel, got, tt.want)
		}
	}
}
