package training

import (
	"math"

	"github.com/slotnet/slotnet/checkpoints"
	"github.com/slotnet/slotnet/models"
)

// AdamW is decoupled-weight-decay Adam over a model's parameter set. The
// parameter tensors are mutated in place; nothing else writes to them.
type AdamW struct {
	params      *models.Params
	beta1       float32
	beta2       float32
	eps         float32
	weightDecay float32

	step int
	m    map[string][]float32
	v    map[string][]float32
}

func NewAdamW(params *models.Params, weightDecay float32) *AdamW {
	opt := &AdamW{
		params:      params,
		beta1:       0.9,
		beta2:       0.999,
		eps:         1e-8,
		weightDecay: weightDecay,
		m:           make(map[string][]float32),
		v:           make(map[string][]float32),
	}
	for t := range params.All() {
		opt.m[t.Name] = make([]float32, t.Len())
		opt.v[t.Name] = make([]float32, t.Len())
	}
	return opt
}

func (o *AdamW) Step(lr float32) {
	o.step++
	correction1 := 1 - float32(math.Pow(float64(o.beta1), float64(o.step)))
	correction2 := 1 - float32(math.Pow(float64(o.beta2), float64(o.step)))

	for t := range o.params.All() {
		if t.Grad == nil {
			continue
		}
		m := o.m[t.Name]
		v := o.v[t.Name]
		for i, g := range t.Grad {
			m[i] = o.beta1*m[i] + (1-o.beta1)*g
			v[i] = o.beta2*v[i] + (1-o.beta2)*g*g
			mHat := m[i] / correction1
			vHat := v[i] / correction2
			t.Data[i] -= lr * (mHat/(float32(math.Sqrt(float64(vHat)))+o.eps) +
				o.weightDecay*t.Data[i])
		}
	}
}

// State exports the moment estimates for checkpointing.
func (o *AdamW) State() *checkpoints.OptimizerState {
	state := &checkpoints.OptimizerState{
		Step: o.step,
		M:    make(map[string][]float32, len(o.m)),
		V:    make(map[string][]float32, len(o.v)),
	}
	for name, m := range o.m {
		state.M[name] = append([]float32(nil), m...)
	}
	for name, v := range o.v {
		state.V[name] = append([]float32(nil), v...)
	}
	return state
}

// LoadState restores moment estimates; entries that do not match the
// current parameter set are ignored rather than rejected, since the
// parameters themselves are validated separately.
func (o *AdamW) LoadState(state *checkpoints.OptimizerState) {
	if state == nil {
		return
	}
	o.step = state.Step
	for name, m := range o.m {
		if saved, ok := state.M[name]; ok && len(saved) == len(m) {
			copy(m, saved)
		}
	}
	for name, v := range o.v {
		if saved, ok := state.V[name]; ok && len(saved) == len(v) {
			copy(v, saved)
		}
	}
}
