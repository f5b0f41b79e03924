package datasets

import (
	"bufio"
	"context"
	"encoding/json"
	"iter"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/slotnet/slotnet/logs"
)

// Stats summarizes one load: skipped lines are the only signal of
// data-quality problems, so they are always counted and logged.
type Stats struct {
	Loaded     int
	Skipped    int
	Categories map[string]int
}

func newStats() Stats {
	return Stats{
		Categories: make(map[string]int),
	}
}

type LoadOptions struct {
	MaxSamples int // 0 means unlimited
}

// Iter lazily yields samples from a newline-delimited file, applying the
// same per-record transformation as the eager loader. Unparseable lines
// and records without a prompt or instructions are skipped, counted into
// stats when given. The sequence is restartable: each range re-opens the
// file.
func Iter(path string, options LoadOptions, stats *Stats) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		if stats != nil {
			*stats = newStats()
		}

		f, err := os.Open(path)
		if err != nil {
			yield(Sample{}, err)
			return
		}
		defer f.Close()

		loaded := 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
		for scanner.Scan() {
			if options.MaxSamples > 0 && loaded >= options.MaxSamples {
				return
			}
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var rec record
			if err := json.Unmarshal(line, &rec); err != nil {
				if stats != nil {
					stats.Skipped++
				}
				continue
			}
			sample, ok := rec.toSample()
			if !ok {
				if stats != nil {
					stats.Skipped++
				}
				continue
			}

			loaded++
			if stats != nil {
				stats.Loaded++
				stats.Categories[sample.Category]++
			}
			if !yield(sample, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Sample{}, err)
		}
	}
}

// LoadSamples eagerly materializes a whole file.
type LoadSamples func(path string, options LoadOptions) ([]Sample, Stats, error)

func (Module) LoadSamples(
	logger logs.Logger,
) LoadSamples {
	return func(path string, options LoadOptions) ([]Sample, Stats, error) {
		var samples []Sample
		var stats Stats
		for sample, err := range Iter(path, options, &stats) {
			if err != nil {
				return nil, stats, err
			}
			samples = append(samples, sample)
		}

		logger.InfoContext(context.Background(), "samples loaded",
			"path", path,
			"loaded", stats.Loaded,
			"skipped", stats.Skipped,
		)
		names := lo.Keys(stats.Categories)
		sort.Slice(names, func(i, j int) bool {
			return stats.Categories[names[i]] > stats.Categories[names[j]]
		})
		for _, name := range names {
			logger.Info("category",
				"name", name,
				"count", stats.Categories[name],
			)
		}

		return samples, stats, nil
	}
}
