// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
	"github.com/lwhile/mastering-taproot/sighash"
	"github.com/lwhile/mastering-taproot/spend"
	"github.com/lwhile/mastering-taproot/tappsbt"
	"github.com/lwhile/mastering-taproot/taproot"
)

// logWriter implements an io.Writer that outputs to both standard error and
// the write-end pipe of an initialized log rotator.  Standard output is left
// to command results.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)

	rotatorMtx.Lock()
	if LogRotator != nil {
		LogRotator.Write(p)
	}
	rotatorMtx.Unlock()

	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsystem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = btclog.NewBackend(logWriter{})

	// LogRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	LogRotator *rotator.Rotator
	rotatorMtx sync.Mutex

	taprLog = backendLog.Logger("TAPR")
	sghsLog = backendLog.Logger("SGHS")
	spndLog = backendLog.Logger("SPND")
	tpsbLog = backendLog.Logger("TPSB")

	// TctlLog is the logger of the tapctl command.
	TctlLog = backendLog.Logger("TCTL")
)

// Initialize package-global logger variables.
func init() {
	taproot.UseLogger(taprLog)
	sighash.UseLogger(sghsLog)
	spend.UseLogger(spndLog)
	tappsbt.UseLogger(tpsbLog)
}

// SubsystemLoggers maps each subsystem identifier to its associated logger.
var SubsystemLoggers = map[string]btclog.Logger{
	"TAPR": taprLog,
	"SGHS": sghsLog,
	"SPND": spndLog,
	"TPSB": tpsbLog,
	"TCTL": TctlLog,
}

// InitLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotater variables are used.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	rotatorMtx.Lock()
	LogRotator = r
	rotatorMtx.Unlock()

	return nil
}

// CloseLogRotator flushes and closes the log rotator if one was initialized.
func CloseLogRotator() {
	rotatorMtx.Lock()
	defer rotatorMtx.Unlock()

	if LogRotator != nil {
		LogRotator.Close()
		LogRotator = nil
	}
}

// SetLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := SubsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) {
	for subsystemID := range SubsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(SubsystemLoggers))
	for subsysID := range SubsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}

	sort.Strings(subsystems)
	return subsystems
}

// ValidLogLevel returns whether or not logLevel is a valid debug log level.
func ValidLogLevel(logLevel string) bool {
	_, ok := btclog.LevelFromString(logLevel)
	return ok
}

// ParseAndSetDebugLevels parses a debug level specification and sets the
// levels accordingly.  The specification is either a single level applied to
// every subsystem, or a comma separated list of subsystem=level pairs which
// may be preceded by a global level.
func ParseAndSetDebugLevels(debugLevel string) error {
	levels := strings.Split(debugLevel, ",")

	// If the first entry has no =, treat it as the log level for all
	// subsystems.
	globalLevel := levels[0]
	if !strings.Contains(globalLevel, "=") {
		if !ValidLogLevel(globalLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, globalLevel)
		}

		SetLogLevels(globalLevel)
		levels = levels[1:]
	}

	for _, logLevelPair := range levels {
		fields := strings.Split(logLevelPair, "=")
		if len(fields) != 2 {
			str := "the specified debug level has an invalid " +
				"format [%v] -- use format subsystem1=level1," +
				"subsystem2=level2"
			return fmt.Errorf(str, logLevelPair)
		}
		subsysID, logLevel := fields[0], fields[1]

		if _, exists := SubsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsystems %v"
			return fmt.Errorf(str, subsysID, SupportedSubsystems())
		}
		if !ValidLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		SetLogLevel(subsysID, logLevel)
	}

	return nil
}

// NewTestLogger returns a logger writing to w at the passed level.  It is
// meant for tests that want to capture the output of a subsystem.
func NewTestLogger(w io.Writer, subsystem string,
	level btclog.Level) btclog.Logger {

	logger := btclog.NewBackend(w).Logger(subsystem)
	logger.SetLevel(level)

	return logger
}
