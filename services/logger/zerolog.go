package logsvc

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// ZeroLogger is the development logger; it writes structured lines to the
// console instead of shipping them to Rollbar.
type ZeroLogger struct {
	log     zerolog.Logger
	enabled bool
}

var _ core.Logger = (*ZeroLogger)(nil)

func NewZeroLogger(conf *core.Config) *ZeroLogger {
	var out io.Writer = os.Stderr
	if conf.Debug {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	log := zerolog.New(out).With().
		Timestamp().
		Str("app", conf.AppName).
		Str("build", conf.Build).
		Logger()
	return &ZeroLogger{log: log, enabled: true}
}

func (l *ZeroLogger) Enable(enabled bool) { l.enabled = enabled }

func (l *ZeroLogger) emit(ev *zerolog.Event, msg string, args []interface{}) {
	if !l.enabled {
		return
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			ev = ev.AnErr("error", v)
		case user.User:
			ev = ev.Str("user_id", v.ID).Str("user_email", v.Email)
		case map[string]interface{}:
			ev = ev.Fields(v)
		default:
			ev = ev.Interface("arg", v)
		}
	}
	ev.Msg(msg)
}

func (l *ZeroLogger) Debug(msg string, args ...interface{}) { l.emit(l.log.Debug(), msg, args) }
func (l *ZeroLogger) Info(msg string, args ...interface{})  { l.emit(l.log.Info(), msg, args) }
func (l *ZeroLogger) Warn(msg string, args ...interface{})  { l.emit(l.log.Warn(), msg, args) }
func (l *ZeroLogger) Error(msg string, args ...interface{}) { l.emit(l.log.Error(), msg, args) }

func (l *ZeroLogger) Fatal(msg string, args ...interface{}) {
	l.emit(l.log.Fatal(), msg, args)
}
