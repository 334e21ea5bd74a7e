// Package zap adapts a *zap.Logger to factory.Logger.
package zap

import (
	"go.uber.org/zap"

	"github.com/IvanBrykalov/uniquefactory/factory"
)

var _ factory.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names the logger "uniquefactory" so factory lines are easy to filter.
func New(l *zap.Logger) ZapLogger { return ZapLogger{L: l.Named("uniquefactory")} }

func (z ZapLogger) Debug(msg string, f factory.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f factory.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f factory.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f factory.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f factory.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
