package dlog

import "go.uber.org/zap"

// zapLogger adapts *zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger returns the kernel's default Logger, backed by zap. quiet
// mirrors Builder.WithQuiet: true yields zap.NewNop (diagnostics are
// computed but never written), false yields zap.NewProduction's
// JSON-structured production config.
func NewZapLogger(quiet bool) (Logger, error) {
	var z *zap.Logger
	var err error
	if quiet {
		z = zap.NewNop()
	} else {
		z, err = zap.NewProduction()
		if err != nil {
			return nil, err
		}
	}
	return &zapLogger{s: z.Sugar()}, nil
}

func (l *zapLogger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Info(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warn(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
