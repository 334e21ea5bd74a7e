// Package logrus adapts a *logrus.Entry to factory.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/IvanBrykalov/uniquefactory/factory"
)

var _ factory.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f factory.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f factory.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f factory.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f factory.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
