// Package logging configures the process-wide logrus logger used by
// cmd/httpcored and the access-log decorator, and exposes
// component-scoped entries that carry a "component" field.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Options configures the application logger: where application log
// output goes, its level, whether it's JSON, and an optional line
// prefix. Of these, only the level is exposed on the command line.
type Options struct {
	ApplicationLogOutput      io.Writer
	ApplicationLogLevel       log.Level
	ApplicationLogJSONEnabled bool
	ApplicationLogPrefix      string
}

type prefixFormatter struct {
	prefix string
	next   log.Formatter
}

func (f *prefixFormatter) Format(e *log.Entry) ([]byte, error) {
	b, err := f.next.Format(e)
	if err != nil {
		return nil, err
	}
	return append([]byte(f.prefix), b...), nil
}

// Init applies Options to the global logrus logger. Call it once at
// process startup, before any other package logs.
func Init(o Options) {
	if o.ApplicationLogOutput != nil {
		log.SetOutput(o.ApplicationLogOutput)
	}

	var formatter log.Formatter = &log.TextFormatter{}
	if o.ApplicationLogJSONEnabled {
		formatter = &log.JSONFormatter{}
	}
	if o.ApplicationLogPrefix != "" {
		formatter = &prefixFormatter{prefix: o.ApplicationLogPrefix, next: formatter}
	}
	log.SetFormatter(formatter)

	level := o.ApplicationLogLevel
	if level == log.PanicLevel {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Get returns the root application log entry.
func Get() *log.Entry { return log.NewEntry(log.StandardLogger()) }

// WithComponent scopes subsequent fields to a named subsystem, e.g.
// "router", "http2ingress", "dispatch".
func WithComponent(name string) *log.Entry { return Get().WithField("component", name) }
