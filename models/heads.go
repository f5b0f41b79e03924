package models

// Instruction field cardinalities of the target ISA.
const (
	NumOpcodes   = 33
	NumModes     = 8
	NumRegisters = 32
	ImmBins      = 256
)

// HeadSpec describes one per-slot classification head. All eight heads are
// structurally identical, so model and loss code iterate this table instead
// of spelling each head out.
type HeadSpec struct {
	Name    string
	Classes int
	Weight  float32
}

// HeadTable returns the eight heads in canonical order. The order is part
// of the exported-artifact contract and must not change.
func HeadTable() []HeadSpec {
	return []HeadSpec{
		{Name: "valid", Classes: 2, Weight: 1},
		{Name: "opcode", Classes: NumOpcodes, Weight: 2},
		{Name: "mode", Classes: NumModes, Weight: 1},
		{Name: "rd", Classes: NumRegisters, Weight: 1},
		{Name: "rs1", Classes: NumRegisters, Weight: 1},
		{Name: "rs2", Classes: NumRegisters, Weight: 1},
		{Name: "has_imm", Classes: 2, Weight: 0.5},
		{Name: "imm_bin", Classes: ImmBins, Weight: 0.5},
	}
}
