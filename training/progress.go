package training

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// progress overwrites a single stderr line with the batch counter. It
// stays silent when stderr is not a terminal, so logs piped to a file or
// the journal are not littered with carriage returns.
type progress struct {
	enabled bool
}

func newProgress() *progress {
	return &progress{
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

func (p *progress) step(epoch, done, total int) {
	if !p.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\repoch %d: batch %d/%d ", epoch, done, total)
}

func (p *progress) clear() {
	if !p.enabled {
		return
	}
	fmt.Fprint(os.Stderr, "\r\033[K")
}
