package logger

import (
	"github.com/sirupsen/logrus"
)

// New configures the package-level logrus logger every collaborator in this
// repo logs through and attaches a Buffer hook to it, so the buffer captures
// every entry those packages emit rather than just entries written through a
// logger instance handed out separately. capacity is the number of entries
// the buffer retains; its contents are served over the operator HTTP surface
// by api.RegisterLogsRoute.
func New(level logrus.Level, capacity int) *Buffer {
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	buf := NewBuffer(capacity)
	logrus.AddHook(buf)
	return buf
}
