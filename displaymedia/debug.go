package displaymedia

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"go2tv.app/displaymedia/internal/env"
)

var (
	diagnosticOutputOnce sync.Once
	diagnosticOutput     io.Writer = os.Stderr

	diagnosticLoggerOnce sync.Once
	diagnosticLogger     *log.Logger
)

func diagnosticWriter() io.Writer {
	diagnosticOutputOnce.Do(func() {
		p := env.String("DISPLAYMEDIA_DEBUG_FILE", "")
		if p == "" {
			return
		}
		f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "displaymedia debug log open failed: %v\n", err)
			return
		}
		diagnosticOutput = f
	})
	return diagnosticOutput
}

func diagnosticf(format string, args ...any) {
	diagnosticLoggerOnce.Do(func() {
		diagnosticLogger = log.New(diagnosticWriter(), "displaymedia ", log.LstdFlags|log.Lmicroseconds)
	})
	diagnosticLogger.Printf(format, args...)
}
