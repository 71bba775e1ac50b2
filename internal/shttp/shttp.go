package shttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/do/v2"
	"github.com/willie68/go_mapview/internal/logging"
)

// Config settings of the http servers
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	HealthPort int    `yaml:"healthport"` // 0 serves health on the main port
}

// SHttp starts and stops the api and health servers
type SHttp interface {
	StartServers(router, healthRouter http.Handler)
	ShutdownServers()
}

type httpConfig interface {
	HTTPConfig() Config
}

type shttp struct {
	log     *slog.Logger
	cfg     Config
	servers []*http.Server
}

var _ SHttp = (*shttp)(nil)

// Init provides the server service
func Init(inj do.Injector) {
	var s SHttp = New(do.MustInvokeAs[httpConfig](inj).HTTPConfig())
	do.ProvideValue(inj, s)
}

func New(cfg Config) *shttp {
	return &shttp{
		log: logging.New("shttp"),
		cfg: cfg,
	}
}

// StartServers starts the servers in the background. If no health port is configured,
// the health router is mounted on the main server below /health.
func (s *shttp) StartServers(router, healthRouter http.Handler) {
	if s.cfg.HealthPort == 0 || s.cfg.HealthPort == s.cfg.Port {
		mux := http.NewServeMux()
		mux.Handle("/health/", http.StripPrefix("/health", healthRouter))
		mux.Handle("/", router)
		s.start(s.cfg.Port, mux)
		return
	}
	s.start(s.cfg.Port, router)
	s.start(s.cfg.HealthPort, http.StripPrefix("/health", healthRouter))
}

func (s *shttp) start(port int, h http.Handler) {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	s.servers = append(s.servers, srv)
	go func() {
		s.log.Info(fmt.Sprintf("starting http server on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(fmt.Sprintf("error on listen and serve: %v", err))
		}
	}()
}

// ShutdownServers gracefully stops all started servers
func (s *shttp) ShutdownServers() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, srv := range s.servers {
		if err := srv.Shutdown(ctx); err != nil {
			s.log.Error(fmt.Sprintf("error on shutdown of %s: %v", srv.Addr, err))
		}
	}
	s.servers = nil
}
