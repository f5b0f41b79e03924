package datasets

import "github.com/slotnet/slotnet/models"

// Batch is the materialized numeric form of a group of samples: token ids
// per sample plus one flat label slice per head, row-major over
// (sample, slot). Batches are rebuilt per access and discarded after the
// training step consumes them.
type Batch struct {
	Tokens  [][]int32
	Targets map[string][]int32
}

func (b *Batch) Size() int {
	return len(b.Tokens)
}

// BuildBatch tokenizes and labels samples. Slots beyond a sample's real
// instructions stay zero, marked invalid.
func BuildBatch(samples []Sample, seqLen int) Batch {
	n := len(samples)
	batch := Batch{
		Tokens:  make([][]int32, n),
		Targets: make(map[string][]int32, 8),
	}
	for _, spec := range models.HeadTable() {
		batch.Targets[spec.Name] = make([]int32, n*NumSlots)
	}

	for i, sample := range samples {
		batch.Tokens[i] = Tokenize(sample.Text, seqLen)
		base := i * NumSlots
		for s, instruction := range sample.Instructions {
			batch.Targets["valid"][base+s] = instruction.Valid
			batch.Targets["opcode"][base+s] = instruction.Opcode
			batch.Targets["mode"][base+s] = instruction.Mode
			batch.Targets["rd"][base+s] = instruction.Rd
			batch.Targets["rs1"][base+s] = instruction.Rs1
			batch.Targets["rs2"][base+s] = instruction.Rs2
			batch.Targets["has_imm"][base+s] = instruction.HasImm
			batch.Targets["imm_bin"][base+s] = instruction.ImmBin
		}
	}

	return batch
}
