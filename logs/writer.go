package logs

import (
	"io"
	"os"
)

type Writer io.Writer

// Writer is where text log output goes. Stderr keeps logs separate
// from prediction output on stdout.
func (Module) Writer() Writer {
	return os.Stderr
}
