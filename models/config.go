package models

import "fmt"

// Config fixes every structural constant of the prediction model. It is
// set once at construction and shared read-only by the encoder, the slot
// decoder and the heads.
type Config struct {
	VocabSize     int
	PadID         int32
	SeqLen        int
	EmbedDim      int
	HiddenDim     int
	NumSlots      int
	NumHeads      int
	DecoderLayers int
	ConvChannels  []int
	Light         bool
}

func DefaultConfig() Config {
	return Config{
		VocabSize:     257, // bytes plus one padding id
		PadID:         256,
		SeqLen:        256,
		EmbedDim:      128,
		HiddenDim:     512,
		NumSlots:      64,
		NumHeads:      8,
		DecoderLayers: 2,
		ConvChannels:  []int{256, 512},
	}
}

func LightConfig() Config {
	cfg := DefaultConfig()
	cfg.EmbedDim = 64
	cfg.HiddenDim = 256
	cfg.ConvChannels = []int{128}
	cfg.Light = true
	return cfg
}

func (c Config) Validate() error {
	if c.HiddenDim%c.NumHeads != 0 {
		return fmt.Errorf("hidden dim %d not divisible by %d attention heads", c.HiddenDim, c.NumHeads)
	}
	if c.VocabSize <= int(c.PadID) {
		return fmt.Errorf("padding id %d outside vocab %d", c.PadID, c.VocabSize)
	}
	if c.SeqLen <= 0 || c.NumSlots <= 0 {
		return fmt.Errorf("bad sequence length %d or slot count %d", c.SeqLen, c.NumSlots)
	}
	return nil
}
