package models

import (
	"fmt"
	"iter"

	"github.com/slotnet/slotnet/tensors"
)

// Params is the ordered set of trainable tensors of a model. Iteration
// order is the registration order, which is deterministic per architecture.
type Params struct {
	list   []*tensors.Tensor
	byName map[string]*tensors.Tensor
}

func newParams() *Params {
	return &Params{
		byName: make(map[string]*tensors.Tensor),
	}
}

func (p *Params) add(name string, t *tensors.Tensor) *tensors.Tensor {
	if _, ok := p.byName[name]; ok {
		panic(fmt.Errorf("duplicated parameter %s", name))
	}
	t.Name = name
	p.list = append(p.list, t)
	p.byName[name] = t
	return t
}

func (p *Params) Get(name string) *tensors.Tensor {
	return p.byName[name]
}

func (p *Params) All() iter.Seq[*tensors.Tensor] {
	return func(yield func(*tensors.Tensor) bool) {
		for _, t := range p.list {
			if !yield(t) {
				return
			}
		}
	}
}

func (p *Params) Count() int {
	n := 0
	for _, t := range p.list {
		n += t.Len()
	}
	return n
}

func (p *Params) ZeroGrad() {
	for _, t := range p.list {
		t.ZeroGrad()
	}
}

// State exports the parameter values keyed by name, for checkpoints.
func (p *Params) State() map[string][]float32 {
	state := make(map[string][]float32, len(p.list))
	for _, t := range p.list {
		values := make([]float32, t.Len())
		copy(values, t.Data)
		state[t.Name] = values
	}
	return state
}

// LoadState copies values back into the registered tensors. Any missing or
// size-mismatched entry fails the whole load; nothing is partially applied.
func (p *Params) LoadState(state map[string][]float32) error {
	for _, t := range p.list {
		values, ok := state[t.Name]
		if !ok {
			return fmt.Errorf("checkpoint missing parameter %s", t.Name)
		}
		if len(values) != t.Len() {
			return fmt.Errorf("parameter %s has %d elements, checkpoint has %d", t.Name, t.Len(), len(values))
		}
	}
	for _, t := range p.list {
		copy(t.Data, state[t.Name])
	}
	return nil
}
