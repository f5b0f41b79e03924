package datasets

// PadID is the reserved token id appended after the prompt bytes.
const PadID int32 = 256

// Tokenize maps text to a fixed-length byte-level id sequence: UTF-8 bytes
// as-is, truncated to seqLen, padded with PadID.
func Tokenize(text string, seqLen int) []int32 {
	ids := make([]int32, seqLen)
	raw := []byte(text)
	for i := range ids {
		if i < len(raw) {
			ids[i] = int32(raw[i])
		} else {
			ids[i] = PadID
		}
	}
	return ids
}
