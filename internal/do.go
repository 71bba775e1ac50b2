package internal

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/willie68/go_mapview/internal/config"
	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/provider"
	"github.com/willie68/go_mapview/internal/render"
	"github.com/willie68/go_mapview/internal/shttp"
	"github.com/willie68/go_mapview/internal/tiles"
	"github.com/willie68/go_mapview/internal/utils/measurement"
)

// Init wires all services of the actual config into the injector
func Init(inj do.Injector) {
	config.Init(inj)
	logging.Init(inj)
	measurement.Init(inj)
	provider.Init(inj)
	tiles.Init(inj)
	render.Init(inj)
	shttp.Init(inj)
}

// Stop shuts down all services, closing the tile stores and log files
func Stop(inj do.Injector) {
	report := inj.Shutdown()
	if report != nil && !report.Succeed {
		logging.New("internal").Error(fmt.Sprintf("error on shutdown: %v", report))
	}
}
