package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/samber/do/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configuration of the logging
type Config struct {
	Level      string            `yaml:"level"`
	Format     string            `yaml:"format"`   // text or json
	Filename   string            `yaml:"filename"` // optional, log file with rotation
	MaxSize    int               `yaml:"maxsize"`  // in MB
	MaxBackups int               `yaml:"maxbackups"`
	MaxAge     int               `yaml:"maxage"` // in days
	Gelfurl    string            `yaml:"gelf-url"`
	Gelfport   int               `yaml:"gelf-port"`
	Attrs      map[string]string `yaml:"attrs"`
}

type loggingConfig interface {
	LoggingConfig() *Config
}

// Service holds the sinks of the root logger, closing them on shutdown
type Service struct {
	closers []io.Closer
}

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Init initialise the root logger from the injected config
func Init(inj do.Injector) {
	cfg := do.MustInvokeAs[loggingConfig](inj).LoggingConfig()
	s, err := Configure(cfg)
	if err != nil {
		New("logging").Error(fmt.Sprintf("error on configuring logging: %v", err))
	}
	do.ProvideValue(inj, s)
}

// Configure builds the root logger, later calls replace the former configuration
func Configure(cfg *Config) (*Service, error) {
	s := &Service{}
	if cfg == nil {
		cfg = &Config{}
	}
	lvl := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: lvl}

	var w io.Writer = os.Stdout
	if cfg.Filename != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		}
		s.closers = append(s.closers, lj)
		w = io.MultiWriter(os.Stdout, lj)
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	var err error
	if cfg.Gelfurl != "" {
		var gh *gelfHandler
		gh, err = newGelfHandler(cfg.Gelfurl, cfg.Gelfport, lvl)
		if err == nil {
			s.closers = append(s.closers, gh)
			handler = fanout{handler, gh}
		}
	}

	attrs := make([]slog.Attr, 0, len(cfg.Attrs))
	for k, v := range cfg.Attrs {
		attrs = append(attrs, slog.String(k, v))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	root.Store(slog.New(handler))
	return s, err
}

// Shutdown closing log file and gelf connection
func (s *Service) Shutdown() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("error closing log sinks: %v", errs)
	}
	return nil
}

// ParseLevel converts the config level into a slog level, info is the default
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a named logger. The logger follows later changes of the root configuration,
// so it can be created in package vars.
func New(name string) *slog.Logger {
	return slog.New(&delegate{}).With("name", name)
}

// Root the actual root logger
func Root() *slog.Logger {
	return root.Load()
}

// delegate forwards every record to the handler of the current root logger
type delegate struct {
	chain []func(slog.Handler) slog.Handler
}

func (d *delegate) handler() slog.Handler {
	h := root.Load().Handler()
	for _, c := range d.chain {
		h = c(h)
	}
	return h
}

func (d *delegate) Enabled(ctx context.Context, l slog.Level) bool {
	return root.Load().Handler().Enabled(ctx, l)
}

func (d *delegate) Handle(ctx context.Context, r slog.Record) error {
	return d.handler().Handle(ctx, r)
}

func (d *delegate) WithAttrs(attrs []slog.Attr) slog.Handler {
	return d.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (d *delegate) WithGroup(name string) slog.Handler {
	return d.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (d *delegate) with(f func(slog.Handler) slog.Handler) *delegate {
	chain := make([]func(slog.Handler) slog.Handler, len(d.chain), len(d.chain)+1)
	copy(chain, d.chain)
	return &delegate{chain: append(chain, f)}
}

// fanout writes records to all handlers
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make(fanout, len(f))
	for i, h := range f {
		hs[i] = h.WithAttrs(attrs)
	}
	return hs
}

func (f fanout) WithGroup(name string) slog.Handler {
	hs := make(fanout, len(f))
	for i, h := range f {
		hs[i] = h.WithGroup(name)
	}
	return hs
}
