package exports

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Header is the JSON sidecar written next to the artifact, readable
// without decoding the graph itself.
type Header struct {
	Version int  `json:"version"`
	Light   bool `json:"light"`
	SeqLen  int  `json:"seq_len"`
	Slots   int  `json:"slots"`
	Nodes   int  `json:"nodes"`
}

// Save validates the graph and writes it atomically: the encoded bytes go
// to a temporary file in the target directory and only a successful rename
// makes them visible. A validation or write failure leaves no partial
// artifact behind.
func Save(path string, graph *Graph) (err error) {
	if err := graph.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid graph: %w", err)
	}

	file, err := os.CreateTemp(filepath.Dir(path), ".graph-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	if err = gob.NewEncoder(file).Encode(graph); err != nil {
		return err
	}
	if err = file.Sync(); err != nil {
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}
	if err = os.Rename(file.Name(), path); err != nil {
		return err
	}

	header, err := json.MarshalIndent(Header{
		Version: graph.Version,
		Light:   graph.Config.Light,
		SeqLen:  graph.Config.SeqLen,
		Slots:   graph.Config.NumSlots,
		Nodes:   len(graph.Nodes),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path+".json", append(header, '\n'), 0644)
}

// Load reads a graph artifact and validates it before returning, so a
// truncated or corrupted file is rejected here rather than at run time.
func Load(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var graph Graph
	if err := gob.NewDecoder(file).Decode(&graph); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &graph, nil
}
