package log

import (
	"gopkg.in/Sirupsen/logrus.v0"
)

// Level mirrors logrus severity ordering: lower is more severe.
type Level uint32

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func init() {
	// Gating is performed by Module.Enabled, the backend must let
	// everything through.
	logrus.SetLevel(logrus.DebugLevel)
}
