package model

import (
	"fmt"
	"strings"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// stateDicter is implemented by every sub-module that can export and load
// its parameters as a flat name→tensor map.
type stateDicter interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(map[string]*tensor.RawTensor) error
}

// mergeState copies a sub-module's state dict into dst under prefix.
func mergeState(dst map[string]*tensor.RawTensor, prefix string, sub map[string]*tensor.RawTensor) {
	for name, raw := range sub {
		dst[prefix+"."+name] = raw
	}
}

// subState extracts the entries under prefix, stripping the prefix.
func subState(state map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	sub := make(map[string]*tensor.RawTensor)
	for name, raw := range state {
		if rest, ok := strings.CutPrefix(name, prefix+"."); ok {
			sub[rest] = raw
		}
	}
	return sub
}

// loadNamed loads each named sub-module from its prefixed slice of state.
func loadNamed(state map[string]*tensor.RawTensor, parts map[string]stateDicter) error {
	for prefix, mod := range parts {
		if err := mod.LoadStateDict(subState(state, prefix)); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	return nil
}

// StateDict returns all MLP parameters keyed by message-function name.
func (c *NetConv[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "msg_o2i", c.msgO2I.StateDict())
	mergeState(state, "msg_i2o", c.msgI2O.StateDict())
	mergeState(state, "reduce_o", c.reduceO.StateDict())
	return state
}

// LoadStateDict loads all MLP parameters keyed the way StateDict produces
// them.
func (c *NetConv[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadNamed(state, map[string]stateDicter{
		"msg_o2i":  c.msgO2I,
		"msg_i2o":  c.msgI2O,
		"reduce_o": c.reduceO,
	})
}

// StateDict returns all MLP parameters keyed by propagation-function name.
func (p *SignalProp[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "net_prop", p.netProp.StateDict())
	mergeState(state, "lut_query", p.lutQuery.StateDict())
	mergeState(state, "lut_attn", p.lutAttn.StateDict())
	mergeState(state, "cellarc_msg", p.cellarcMsg.StateDict())
	mergeState(state, "cell_reduce", p.cellReduce.StateDict())
	return state
}

// LoadStateDict loads all MLP parameters keyed the way StateDict produces
// them.
func (p *SignalProp[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadNamed(state, map[string]stateDicter{
		"net_prop":    p.netProp,
		"lut_query":   p.lutQuery,
		"lut_attn":    p.lutAttn,
		"cellarc_msg": p.cellarcMsg,
		"cell_reduce": p.cellReduce,
	})
}

// StateDict returns the parameters of every composed stage.
func (m *TimingGCN[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "nc1", m.nc1.StateDict())
	mergeState(state, "nc2", m.nc2.StateDict())
	mergeState(state, "nc3", m.nc3.StateDict())
	mergeState(state, "prop", m.prop.StateDict())
	return state
}

// LoadStateDict loads the parameters of every composed stage.
func (m *TimingGCN[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadNamed(state, map[string]stateDicter{
		"nc1":  m.nc1,
		"nc2":  m.nc2,
		"nc3":  m.nc3,
		"prop": m.prop,
	})
}

// StateDict returns both MLPs' parameters.
func (c *AllConv[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "msg", c.msg.StateDict())
	mergeState(state, "reduce", c.reduce.StateDict())
	return state
}

// LoadStateDict loads both MLPs' parameters.
func (c *AllConv[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadNamed(state, map[string]stateDicter{
		"msg":    c.msg,
		"reduce": c.reduce,
	})
}

// StateDict returns the parameters of the whole stack, intermediate layers
// keyed by index.
func (m *DeepGCNII[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "layer0", m.layer0.StateDict())
	for i, layer := range m.layers {
		mergeState(state, fmt.Sprintf("layers.%d", i), layer.StateDict())
	}
	mergeState(state, "layerN", m.layerN.StateDict())
	return state
}

// LoadStateDict loads the parameters of the whole stack.
func (m *DeepGCNII[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	parts := map[string]stateDicter{
		"layer0": m.layer0,
		"layerN": m.layerN,
	}
	for i, layer := range m.layers {
		parts[fmt.Sprintf("layers.%d", i)] = layer
	}
	return loadNamed(state, parts)
}
