package main

import (
	"fmt"
	"log/slog"
	"os"

	"gioui.org/app"
	"github.com/samber/do/v2"
	flag "github.com/spf13/pflag"
	"github.com/willie68/go_mapview/configs"
	"github.com/willie68/go_mapview/internal"
	"github.com/willie68/go_mapview/internal/config"
	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/provider"
	"github.com/willie68/go_mapview/internal/render"
	"github.com/willie68/go_mapview/internal/ui"
	"github.com/willie68/go_mapview/pkg/fileutils"
)

var (
	log         *slog.Logger
	configFile  string
	showVersion bool
	initConfig  bool
	latlon      string
	zoom        int
	mapProvider string
	renderFile  string
	importDir   string
	storePath   string
)

func init() {
	flag.BoolVarP(&initConfig, "init", "i", false, "init config, writes out a default config.")
	flag.BoolVarP(&showVersion, "version", "v", false, "showing the version")
	flag.StringVarP(&configFile, "config", "c", "config.yaml", "this is the path and filename to the config file")
	flag.StringVarP(&latlon, "latlon", "l", "", "start location as \"lat, lon\", overwrites the location of the config")
	flag.IntVarP(&zoom, "zoom", "z", 0, "tile zoom level (0..22), overwrites the zoom of the config")
	flag.StringVarP(&mapProvider, "provider", "s", "", "tile provider, overwrites the provider of the config")
	flag.StringVarP(&renderFile, "render", "r", "", "render the map into this png file instead of opening a window")
	flag.StringVar(&importDir, "import", "", "import a {z}/{x}/{y}.png tile directory into the badger store given with --store")
	flag.StringVar(&storePath, "store", "", "path of the badger tile store for --import")
	flag.Usage = func() {
		fmt.Printf("Usage of %s:\n", os.Args[0])
		fmt.Println("more on https://github.com/willie68/go_mapview")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("examples:")
		fmt.Println("show the map of the config location in a window")
		fmt.Printf("%s -c config.yaml\n", os.Args[0])
		fmt.Println("render a location into a png file")
		fmt.Printf("%s -c config.yaml -l \"48.1351, 11.5820\" -z 14 -r munich.png\n", os.Args[0])
		fmt.Println("import a tile directory into a badger store, usable as provider of type badger")
		fmt.Printf("%s --import ./tiles --store ./tiles.db\n", os.Args[0])
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
	log = logging.New("main")

	if importDir != "" {
		os.Exit(importTiles())
	}

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "can't load config: %v\r\n\r\n", err)
		flag.Usage()
		os.Exit(1)
	}
	config.SetParameter(
		config.WithLocation(latlon),
		config.WithZoom(zoom),
		config.WithProvider(mapProvider),
	)

	inj := do.New()
	internal.Init(inj)
	r := do.MustInvoke[*render.Renderer](inj)

	if renderFile != "" {
		code := renderPNG(r)
		internal.Stop(inj)
		os.Exit(code)
	}

	log.Info("starting map viewer")
	go func() {
		err := ui.Run(r)
		internal.Stop(inj)
		if err != nil {
			log.Error(fmt.Sprintf("error in window: %v", err))
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

// loadConfig loads the config file, without one the embedded default config is used
func loadConfig() error {
	if !fileutils.FileExists(configFile) {
		log.Warn(fmt.Sprintf("config %s not found, using default config", configFile))
		return config.Parse([]byte(configs.ConfigFile))
	}
	return config.Load(configFile)
}

func renderPNG(r *render.Renderer) int {
	v, err := r.RenderText(r.Config().Location, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't render map: %v\r\n", err)
		return 1
	}
	f, err := os.Create(renderFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't create %s: %v\r\n", renderFile, err)
		return 1
	}
	defer f.Close()
	if err := v.WritePNG(f); err != nil {
		fmt.Fprintf(os.Stderr, "can't write %s: %v\r\n", renderFile, err)
		return 1
	}
	log.Info(fmt.Sprintf("map of %s written to %s, %dx%d pixel", v.Center, renderFile, v.Image.Bounds().Dx(), v.Image.Bounds().Dy()))
	return 0
}

func importTiles() int {
	if storePath == "" {
		fmt.Fprint(os.Stderr, "no store given, use --store <path>\r\n")
		return 1
	}
	store, err := provider.OpenBadgerStore(storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't open store: %v\r\n", err)
		return 1
	}
	defer store.Close()
	count, err := store.ImportDir(importDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed after %d tiles: %v\r\n", count, err)
		return 1
	}
	log.Info(fmt.Sprintf("imported %d tiles from %s into %s", count, importDir, storePath))
	return 0
}
