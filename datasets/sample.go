package datasets

// Sample is one training example: a prompt plus its labeled instruction
// slots, already clamped and padded to NumSlots. Samples are built once at
// load time and never mutated.
type Sample struct {
	Text         string
	Category     string
	Instructions [NumSlots]Instruction
}

// record mirrors one line of the newline-delimited training data. The
// prompt lives in "context"; "prompt" is the legacy alias.
type record struct {
	Context      string        `json:"context"`
	Prompt       string        `json:"prompt"`
	Category     string        `json:"category"`
	Instructions []Instruction `json:"instructions"`
}

func (r record) toSample() (Sample, bool) {
	text := r.Context
	if text == "" {
		text = r.Prompt
	}
	if text == "" || len(r.Instructions) == 0 {
		return Sample{}, false
	}

	sample := Sample{
		Text:     text,
		Category: r.Category,
	}
	if sample.Category == "" {
		sample.Category = "unknown"
	}
	for i, instruction := range r.Instructions {
		if i >= NumSlots {
			break
		}
		sample.Instructions[i] = instruction.clamp()
	}
	return sample, true
}

// ValidCount reports how many leading slots hold real instructions.
func (s *Sample) ValidCount() int {
	n := 0
	for _, instruction := range s.Instructions {
		if instruction.Valid != 0 {
			n++
		}
	}
	return n
}
