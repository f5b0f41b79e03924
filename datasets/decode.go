package datasets

// Decode turns per-head label grids, as produced by model prediction,
// back into instruction slots. Head names follow the training targets.
func Decode(labels map[string][][]int32) [][]Instruction {
	valid := labels["valid"]
	out := make([][]Instruction, len(valid))
	for b := range valid {
		slots := make([]Instruction, len(valid[b]))
		for s := range slots {
			slots[s] = Instruction{
				Valid:  labels["valid"][b][s],
				Opcode: labels["opcode"][b][s],
				Mode:   labels["mode"][b][s],
				Rd:     labels["rd"][b][s],
				Rs1:    labels["rs1"][b][s],
				Rs2:    labels["rs2"][b][s],
				HasImm: labels["has_imm"][b][s],
				ImmBin: labels["imm_bin"][b][s],
			}
		}
		out[b] = slots
	}
	return out
}
