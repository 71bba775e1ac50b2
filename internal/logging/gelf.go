package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aphistic/golf"
)

// gelfHandler sends log records to a graylog server
type gelfHandler struct {
	client *golf.Client
	logger *golf.Logger
	level  slog.Leveler
	attrs  map[string]interface{}
	prefix string
}

func newGelfHandler(url string, port int, level slog.Leveler) (*gelfHandler, error) {
	c, err := golf.NewClient()
	if err != nil {
		return nil, err
	}
	err = c.Dial(fmt.Sprintf("udp://%s:%d", url, port))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("can't dial gelf server: %v", err)
	}
	l, err := c.NewLogger()
	if err != nil {
		c.Close()
		return nil, err
	}
	l.SetAttr("facility", "go_mapview")
	return &gelfHandler{
		client: c,
		logger: l,
		level:  level,
		attrs:  make(map[string]interface{}),
	}, nil
}

func (g *gelfHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= g.level.Level()
}

func (g *gelfHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]interface{}, len(g.attrs)+r.NumAttrs())
	for k, v := range g.attrs {
		attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[g.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})
	switch {
	case r.Level >= slog.LevelError:
		return g.logger.Errm(attrs, "%s", r.Message)
	case r.Level >= slog.LevelWarn:
		return g.logger.Warnm(attrs, "%s", r.Message)
	case r.Level >= slog.LevelInfo:
		return g.logger.Infom(attrs, "%s", r.Message)
	default:
		return g.logger.Dbgm(attrs, "%s", r.Message)
	}
}

func (g *gelfHandler) WithAttrs(as []slog.Attr) slog.Handler {
	n := g.clone()
	for _, a := range as {
		n.attrs[g.prefix+a.Key] = a.Value.Resolve().Any()
	}
	return n
}

func (g *gelfHandler) WithGroup(name string) slog.Handler {
	n := g.clone()
	n.prefix = g.prefix + name + "."
	return n
}

func (g *gelfHandler) clone() *gelfHandler {
	attrs := make(map[string]interface{}, len(g.attrs))
	for k, v := range g.attrs {
		attrs[k] = v
	}
	return &gelfHandler{
		client: g.client,
		logger: g.logger,
		level:  g.level,
		attrs:  attrs,
		prefix: g.prefix,
	}
}

// Close closes the connection to the gelf server
func (g *gelfHandler) Close() error {
	return g.client.Close()
}
