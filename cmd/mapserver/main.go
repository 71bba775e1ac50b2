package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	flag "github.com/spf13/pflag"
	"github.com/willie68/go_mapview/configs"
	"github.com/willie68/go_mapview/internal"
	"github.com/willie68/go_mapview/internal/api"
	"github.com/willie68/go_mapview/internal/config"
	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/shttp"
	"github.com/willie68/go_mapview/pkg/fileutils"
)

var (
	log         *slog.Logger
	configFile  string
	showVersion bool
	initConfig  bool
	port        int
	zoom        int
	mapProvider string
	latlon      string
)

func init() {
	flag.BoolVarP(&initConfig, "init", "i", false, "init config, writes out a default config.")
	flag.BoolVarP(&showVersion, "version", "v", false, "showing the version")
	flag.StringVarP(&configFile, "config", "c", "config.yaml", "this is the path and filename to the config file")
	flag.IntVarP(&port, "port", "p", 0, "overwrite the port (8580) of the config")
	flag.IntVarP(&zoom, "zoom", "z", 0, "default tile zoom level of map requests")
	flag.StringVarP(&mapProvider, "provider", "s", "", "default provider of map requests")
	flag.StringVarP(&latlon, "latlon", "l", "", "default location of map requests")
	flag.Usage = func() {
		fmt.Printf("Usage of %s:\n", os.Args[0])
		fmt.Println("more on https://github.com/willie68/go_mapview")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("examples:")
		fmt.Println("take the default config, add your tile providers and run")
		fmt.Printf("%s -c config.yaml\n", os.Args[0])
		fmt.Println("then get a map: http://localhost:8580/api/v1/map.png?latlon=1.34047,103.70935&zoom=15")
	}
}

func main() {
	flag.Parse()
	if showVersion {
		fmt.Println(config.NewVersion().String())
		os.Exit(0)
	}
	if initConfig {
		fmt.Println(configs.ConfigFile)
		os.Exit(0)
	}
	if !fileutils.FileExists(configFile) {
		fmt.Fprint(os.Stderr, "no config given or dosn't exists.\r\n\r\n")
		flag.Usage()
		os.Exit(1)
	}
	err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	config.SetParameter(
		config.WithPort(port),
		config.WithZoom(zoom),
		config.WithProvider(mapProvider),
		config.WithLocation(latlon),
	)
	js := config.JSON()
	if js == "" {
		panic("error on marshal config to json")
	}
	fmt.Printf("Config:\n%s\n", js)
	log = logging.New("main")
	log.Info("starting map service")

	inj := do.New()
	internal.Init(inj)

	router, err := api.APIRoutes(inj)
	if err != nil {
		log.Error(fmt.Sprintf("could not create api routes: %v", err))
		os.Exit(1)
	}
	healthRouter := api.HealthRoutes(inj)

	sh := do.MustInvoke[shttp.SHttp](inj)
	sh.StartServers(router, healthRouter)

	log.Info("waiting for clients")
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	sh.ShutdownServers()
	log.Info("server finished")

	internal.Stop(inj)
	os.Exit(0)
}
