package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewire-ml/timewire/internal/backend/cpu"
	"github.com/timewire-ml/timewire/internal/graph"
	"github.com/timewire-ml/timewire/internal/tensor"
)

func homoChain(b testBackend, nf int) *graph.Homograph[testBackend] {
	return &graph.Homograph[testBackend]{
		NumNodes: 4,
		Src:      []int{0, 1, 2},
		Dst:      []int{1, 2, 3},
		NF:       tensor.Randn[float32](tensor.Shape{4, nf}, b),
		EF:       tensor.Randn[float32](tensor.Shape{3, 12}, b),
	}
}

func TestAllConv_OutputShape(t *testing.T) {
	backend := cpu.New()

	g := homoChain(backend, 10)
	conv := NewAllConv(10, 16, backend)

	out, err := conv.Forward(g, g.NF)
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{4, 16}), "output shape %v", out.Shape())
}

func TestAllConv_NoEdges(t *testing.T) {
	backend := cpu.New()

	g := &graph.Homograph[testBackend]{
		NumNodes: 2,
		NF:       tensor.Randn[float32](tensor.Shape{2, 10}, backend),
	}
	conv := NewAllConv(10, 8, backend)

	out, err := conv.Forward(g, g.NF)
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 8}))
}

func TestAllConv_MissingEdgeFeatures(t *testing.T) {
	backend := cpu.New()

	g := homoChain(backend, 10)
	g.EF = nil
	conv := NewAllConv(10, 8, backend)

	_, err := conv.Forward(g, g.NF)
	assert.Error(t, err)
}

func TestDeepGCNII_LayerCounts(t *testing.T) {
	backend := cpu.New()

	m := NewDeepGCNII(5, 4, backend)
	assert.Equal(t, 5, m.NumLayers())
	assert.Equal(t, 3, m.NumIntermediate())

	// With exactly two layers the first feeds the last directly.
	m2 := NewDeepGCNII(2, 4, backend)
	assert.Equal(t, 0, m2.NumIntermediate())
}

func TestDeepGCNII_TooFewLayersPanics(t *testing.T) {
	backend := cpu.New()
	assert.Panics(t, func() {
		NewDeepGCNII(1, 4, backend)
	})
}

func TestDeepGCNII_ForwardShape(t *testing.T) {
	backend := cpu.New()

	g := homoChain(backend, 10)

	for _, layers := range []int{2, 4} {
		m := NewDeepGCNII(layers, 6, backend)
		out, err := m.Forward(g)
		require.NoError(t, err)
		assert.True(t, out.Shape().Equal(tensor.Shape{4, 6}), "layers=%d shape %v", layers, out.Shape())
	}
}

func TestDeepGCNII_Parameters(t *testing.T) {
	backend := cpu.New()

	m := NewDeepGCNII(4, 6, backend)
	want := len(m.layer0.Parameters()) + len(m.layerN.Parameters())
	for _, layer := range m.layers {
		want += len(layer.Parameters())
	}
	assert.Len(t, m.Parameters(), want)
}
