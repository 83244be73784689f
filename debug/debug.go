package debug

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//
// Debug output is controled by PERFDEBUG environment variable, which
// can be a list of selectors (e.g., "SWEEP;COUNTERCLNT").
//

const PERFDEBUG = "PERFDEBUG"

var (
	mu       sync.Mutex
	labels   map[Tselector]bool
	logger   *zap.SugaredLogger
	progname = "minerperf"
)

func init() {
	labels = parseLabels(os.Getenv(PERFDEBUG))
	logger = newLogger()
}

func newLogger() *zap.SugaredLogger {
	ecfg := zap.NewDevelopmentEncoderConfig()
	ecfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	ecfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ecfg), zapcore.Lock(os.Stderr), zapcore.DebugLevel)
	return zap.New(core).Sugar()
}

func parseLabels(s string) map[Tselector]bool {
	m := make(map[Tselector]bool)
	if s == "" {
		return m
	}
	for _, l := range strings.Split(s, ";") {
		if l = strings.TrimSpace(l); l != "" {
			m[Tselector(l)] = true
		}
	}
	return m
}

// SetDebug replaces the enabled selectors, using the same syntax as
// PERFDEBUG.
func SetDebug(s string) {
	mu.Lock()
	defer mu.Unlock()
	labels = parseLabels(s)
}

// SetName sets the program name attached to every log line.
func SetName(name string) {
	mu.Lock()
	defer mu.Unlock()
	progname = name
}

// WillBePrinted reports whether output for label is enabled.
func WillBePrinted(label Tselector) bool {
	mu.Lock()
	defer mu.Unlock()
	return label == ALWAYS || label == ERROR || labels[label]
}

func DPrintf(label Tselector, format string, v ...interface{}) {
	if !WillBePrinted(label) {
		return
	}
	mu.Lock()
	name := progname
	mu.Unlock()
	l := logger.With("prog", name, "sel", string(label))
	if label == ERROR || strings.HasSuffix(string(label), string(ERR)) {
		l.Warnf(format, v...)
	} else {
		l.Infof(format, v...)
	}
}

func DFatalf(format string, v ...interface{}) {
	// Get info for the caller.
	pc, file, line, ok := runtime.Caller(1)
	fnDetails := runtime.FuncForPC(pc)
	msg := fmt.Sprintf(format, v...)
	if ok && fnDetails != nil {
		logger.Fatalf("FATAL %v %v %v:%v %v", progname, fnDetails.Name(), file, line, msg)
	} else {
		logger.Fatalf("FATAL %v (missing details) %v", progname, msg)
	}
}

// Sync flushes buffered log output.
func Sync() {
	logger.Sync()
}
