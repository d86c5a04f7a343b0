package portal

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"go2tv.app/displaymedia/internal/env"
)

var (
	portalDebugEnabledOnce sync.Once
	portalDebugEnabledFlag bool

	portalDebugOutputOnce sync.Once
	portalDebugOutput     io.Writer = os.Stderr

	portalDebugLoggerOnce sync.Once
	portalDebugLogger     *log.Logger
)

func portalDebugEnabled() bool {
	portalDebugEnabledOnce.Do(func() {
		portalDebugEnabledFlag = env.Bool("DISPLAYMEDIA_DEBUG", false) ||
			env.Bool("DISPLAYMEDIA_PORTAL_DEBUG", false)
	})
	return portalDebugEnabledFlag
}

func portalDebugWriter() io.Writer {
	portalDebugOutputOnce.Do(func() {
		p := env.String("DISPLAYMEDIA_PORTAL_DEBUG_FILE", "")
		if p == "" {
			p = env.String("DISPLAYMEDIA_DEBUG_FILE", "")
		}
		if p == "" {
			return
		}
		f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "displaymedia portal debug log open failed: %v\n", err)
			return
		}
		portalDebugOutput = f
	})
	return portalDebugOutput
}

func portalDebugf(format string, args ...any) {
	if !portalDebugEnabled() {
		return
	}
	portalDebugLoggerOnce.Do(func() {
		portalDebugLogger = log.New(portalDebugWriter(), "displaymedia/portal ", log.LstdFlags|log.Lmicroseconds)
	})
	portalDebugLogger.Printf(format, args...)
}
