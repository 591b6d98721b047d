package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timewire-ml/timewire/internal/backend/cpu"
	"github.com/timewire-ml/timewire/internal/tensor"
)

// Reference cell edge feature width: 8 LUTs of size 7x7 need
// 8*(1+14) + 8*49 = 512 slots.
const refCellEF = 512

func TestTimingGCN_OutputShapes(t *testing.T) {
	backend := cpu.New()

	g, ts := chainGraph(backend, 10, 2, refCellEF, 8)
	m := NewTimingGCN(backend)
	m.SetTraining(false)

	for _, groundtruth := range []bool{true, false} {
		netDelays, cellDelays, nodePreds, err := m.Forward(g, ts, groundtruth)
		require.NoError(t, err)

		assert.True(t, netDelays.Shape().Equal(tensor.Shape{4, 4}), "net delays shape %v", netDelays.Shape())
		require.NotNil(t, cellDelays)
		assert.True(t, cellDelays.Shape().Equal(tensor.Shape{1, 4}), "cell delays shape %v", cellDelays.Shape())
		assert.True(t, nodePreds.Shape().Equal(tensor.Shape{4, 8}), "node preds shape %v", nodePreds.Shape())
	}
}

func TestTimingGCN_MatchesManualComposition(t *testing.T) {
	backend := cpu.New()

	g, ts := chainGraph(backend, 10, 2, refCellEF, 8)
	m := NewTimingGCN(backend)

	netDelays, cellDelays, nodePreds, err := m.Forward(g, ts, true)
	require.NoError(t, err)

	// Re-run the pipeline stage by stage with the same sub-modules.
	x, err := m.nc1.Forward(g, ts, g.NF)
	require.NoError(t, err)
	x, err = m.nc2.Forward(g, ts, x)
	require.NoError(t, err)
	x, err = m.nc3.Forward(g, ts, x)
	require.NoError(t, err)

	wantNetDelays := x.Narrow(1, 0, 4)
	nf1 := tensor.Cat([]*tensor.Tensor[float32, testBackend]{g.NF, x}, 1)
	wantPreds, wantCellDelays, err := m.prop.Forward(g, ts, nf1, true)
	require.NoError(t, err)

	for i := range netDelays.Data() {
		assert.Equal(t, wantNetDelays.Data()[i], netDelays.Data()[i], "net delay %d", i)
	}
	for i := range cellDelays.Data() {
		assert.Equal(t, wantCellDelays.Data()[i], cellDelays.Data()[i], "cell delay %d", i)
	}
	for i := range nodePreds.Data() {
		assert.Equal(t, wantPreds.Data()[i], nodePreds.Data()[i], "node pred %d", i)
	}
}

func TestTimingGCN_NetDelaysAreLeadingChannels(t *testing.T) {
	backend := cpu.New()

	g, ts := chainGraph(backend, 10, 2, refCellEF, 8)
	m := NewTimingGCN(backend)

	netDelays, _, _, err := m.Forward(g, ts, true)
	require.NoError(t, err)

	x, err := m.nc1.Forward(g, ts, g.NF)
	require.NoError(t, err)
	x, err = m.nc2.Forward(g, ts, x)
	require.NoError(t, err)
	x, err = m.nc3.Forward(g, ts, x)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, x.At(i, j), netDelays.At(i, j), "channel (%d, %d)", i, j)
		}
	}
}

func TestTimingGCN_RejectsWrongFeatureWidth(t *testing.T) {
	backend := cpu.New()

	g, ts := chainGraph(backend, 12, 2, refCellEF, 8)
	m := NewTimingGCN(backend)

	_, _, _, err := m.Forward(g, ts, false)
	assert.Error(t, err)
}

func TestTimingGCN_ParametersCoverAllStages(t *testing.T) {
	backend := cpu.New()

	m := NewTimingGCN(backend)

	want := len(m.nc1.Parameters()) + len(m.nc2.Parameters()) +
		len(m.nc3.Parameters()) + len(m.prop.Parameters())
	assert.Len(t, m.Parameters(), want)
	assert.NotZero(t, want)
}
