package datasets

import "github.com/slotnet/slotnet/vars"

// NumSlots is the fixed program length every sample is padded to.
const NumSlots = 64

// Instruction is one labeled slot of a target program. A slot with
// Valid == 0 is padding; its other fields are kept at zero so batches stay
// rectangular.
type Instruction struct {
	Valid  int32 `json:"valid"`
	Opcode int32 `json:"opcode"`
	Mode   int32 `json:"mode"`
	Rd     int32 `json:"rd"`
	Rs1    int32 `json:"rs1"`
	Rs2    int32 `json:"rs2"`
	HasImm int32 `json:"has_imm"`
	ImmBin int32 `json:"imm_bin"`
}

// clamp forces every field into its head's class range. Out-of-range labels
// are approximated, not rejected.
func (i Instruction) clamp() Instruction {
	out := Instruction{
		Opcode: vars.Clamp(i.Opcode, 0, 32),
		Mode:   vars.Clamp(i.Mode, 0, 7),
		Rd:     vars.Clamp(i.Rd, 0, 31),
		Rs1:    vars.Clamp(i.Rs1, 0, 31),
		Rs2:    vars.Clamp(i.Rs2, 0, 31),
		ImmBin: EncodeImm(int64(i.ImmBin)),
	}
	if i.Valid != 0 {
		out.Valid = 1
	}
	if i.HasImm != 0 {
		out.HasImm = 1
	}
	return out
}

// EncodeImm quantizes a signed immediate into its 8-bit bin by modulo-256
// wraparound, so -1 maps to 255.
func EncodeImm(value int64) int32 {
	return int32(((value % 256) + 256) % 256)
}

// DecodeImm is the exact inverse of EncodeImm over [-128, 127]: bins at or
// above 128 are the wrapped negatives.
func DecodeImm(bin int32) int32 {
	if bin >= 128 {
		return bin - 256
	}
	return bin
}
