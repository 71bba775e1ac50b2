package config

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/provider"
	"github.com/willie68/go_mapview/internal/render"
	"github.com/willie68/go_mapview/internal/shttp"
	"go.yaml.in/yaml/v3"
)

// Config the configuration of the map viewer and the map server
type Config struct {
	HTTP      shttp.Config       `yaml:"http"`
	Providers provider.ConfigMap `yaml:"providers"`
	View      render.Config      `yaml:"view"`
	Metrics   bool               `yaml:"metrics"`
	Logging   logging.Config     `yaml:"logging"`
}

// Option changes a single parameter of the loaded config, used for command line overrides
type Option func(c *Config)

var (
	config = Default()
)

// Default a config with the default values, without any provider
func Default() Config {
	return Config{
		HTTP: shttp.Config{
			Port: 8580,
		},
		Providers: make(provider.ConfigMap),
		View:      render.DefaultConfig(),
		Logging: logging.Config{
			Level: "info",
		},
	}
}

// Get the actual config
func Get() *Config {
	return &config
}

func WithPort(p int) Option {
	return func(c *Config) {
		if p > 0 {
			c.HTTP.Port = p
		}
	}
}

func WithZoom(z int) Option {
	return func(c *Config) {
		if z > 0 {
			c.View.Zoom = z
		}
	}
}

func WithProvider(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.View.Provider = name
		}
	}
}

func WithLocation(latlon string) Option {
	return func(c *Config) {
		if latlon != "" {
			c.View.Location = latlon
		}
	}
}

// SetParameter applies the options to the actual config
func SetParameter(opts ...Option) {
	for _, o := range opts {
		o(&config)
	}
}

func JSON() string {
	js, err := config.JSON()
	if err != nil {
		return ""
	}
	return js
}

// Load loads the config
func Load(file string) error {
	_, err := os.Stat(file)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("can't load config file: %s", err.Error())
	}
	return Parse(data)
}

// Parse parses yaml data into the actual config, missing values keep their defaults
func Parse(data []byte) error {
	c := Default()
	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return fmt.Errorf("can't unmarshal config file: %s", err.Error())
	}
	config = c
	return nil
}

// Init provides the config and the version to the injector
func Init(inj do.Injector) {
	do.ProvideValue(inj, &config)

	ver := NewVersion()
	do.ProvideValue(inj, *ver)
}

// JSON the config in a human readable form
func (c *Config) JSON() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("can't marshal config to json: %s", err.Error())
	}
	return string(data), nil
}

func (c *Config) GetProviderConfig() provider.ConfigMap {
	return c.Providers
}

func (c *Config) LoggingConfig() *logging.Config {
	return &c.Logging
}

func (c *Config) RenderConfig() render.Config {
	return c.View
}

func (c *Config) HTTPConfig() shttp.Config {
	return c.HTTP
}

func (c *Config) MetricsActive() bool {
	return c.Metrics
}
