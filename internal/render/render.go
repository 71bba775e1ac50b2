package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"golang.org/x/image/draw"

	"github.com/willie68/go_mapview/internal/assets"
	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/internal/provider"
	"github.com/willie68/go_mapview/internal/utils/measurement"
)

type tileService interface {
	HasProvider(providerName string) bool
	FTile(tile model.Tile) (io.ReadCloser, error)
}

type renderConfig interface {
	RenderConfig() Config
}

// Request parameters of a render, zero values are taken from the config
type Request struct {
	Center   model.LatLon
	Zoom     int
	Provider string
	Span     float64
}

// View a stitched map with the marker at the requested location
type View struct {
	Image      *image.RGBA
	Grid       Grid
	Center     model.LatLon
	Provider   string
	TileX      float64         // fractional tile position of the center
	TileY      float64         // fractional tile position of the center
	MarkerAt   image.Point     // pixel position of the center
	MarkerRect image.Rectangle // visible part of the marker
}

// Renderer stitches the tiles of a grid and places the marker
type Renderer struct {
	log     *slog.Logger
	tiles   tileService
	metrics *measurement.Service
	cfg     Config
	marker  image.Image
}

func Init(inj do.Injector) {
	cfg := do.MustInvokeAs[renderConfig](inj).RenderConfig()
	log := logging.New("render")
	marker, err := assets.LoadMarker(cfg.Marker)
	if err != nil {
		log.Warn(fmt.Sprintf("using default marker: %v", err))
		marker = assets.DefaultMarker()
	}
	do.ProvideValue(inj, New(
		do.MustInvokeAs[tileService](inj),
		do.MustInvoke[*measurement.Service](inj),
		cfg,
		marker,
	))
}

func New(ts tileService, ms *measurement.Service, cfg Config, marker image.Image) *Renderer {
	if marker == nil {
		marker = assets.DefaultMarker()
	}
	log := logging.New("render")
	if cfg.Span == 0 {
		cfg.Span = DefaultSpan
	}
	if cfg.Zoom <= 0 || cfg.Zoom > mercantile.MaxZoom {
		log.Warn(fmt.Sprintf("configured zoom %d not usable as default, using %d", cfg.Zoom, DefaultZoom))
		cfg.Zoom = DefaultZoom
	}
	return &Renderer{
		log:     log,
		tiles:   ts,
		metrics: ms,
		cfg:     cfg,
		marker:  marker,
	}
}

// Config the defaults of the renderer
func (r *Renderer) Config() Config {
	return r.cfg
}

// RenderText parses the "lat, lon" text and renders it with the default provider
func (r *Renderer) RenderText(latlon string, zoom int) (*View, error) {
	center, err := model.ParseLatLon(latlon)
	if err != nil {
		return nil, err
	}
	return r.Render(Request{Center: center, Zoom: zoom})
}

// Render loads all tiles of the grid around the center and stitches them together.
// A missing tile aborts the render, there is no partial result.
func (r *Renderer) Render(req Request) (*View, error) {
	td := r.metrics.Start("render")
	defer td.Stop()

	view, err := r.render(r.complete(req))
	if err != nil {
		td.SetError()
		r.log.Error(fmt.Sprintf("render of %s aborted: %v", req.Center, err))
		return nil, err
	}
	r.log.Info(fmt.Sprintf("rendered %s, zoom %d, %d tiles", view.Center, view.Grid.Zoom, view.Grid.Count()))
	return view, nil
}

func (r *Renderer) complete(req Request) Request {
	if req.Zoom == 0 {
		req.Zoom = r.cfg.Zoom
	}
	if req.Provider == "" {
		req.Provider = r.cfg.Provider
	}
	if req.Span == 0 {
		req.Span = r.cfg.Span
	}
	return req
}

func (r *Renderer) render(req Request) (*View, error) {
	if err := req.Center.Validate(); err != nil {
		return nil, err
	}
	if !r.tiles.HasProvider(req.Provider) {
		return nil, errors.Wrap(provider.ErrNotFound, req.Provider)
	}
	g, err := NewGrid(req.Center, req.Zoom, req.Span)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(g.Bounds())
	for _, tile := range g.Tiles(req.Provider) {
		img, err := r.loadTile(tile)
		if err != nil {
			return nil, err
		}
		paste(canvas, img, g.Origin(tile.X, tile.Y))
	}

	fx, fy, at := MarkerPosition(req.Center, g)
	mr := DrawMarker(canvas, r.marker, at)
	return &View{
		Image:      canvas,
		Grid:       g,
		Center:     req.Center,
		Provider:   req.Provider,
		TileX:      fx,
		TileY:      fy,
		MarkerAt:   at,
		MarkerRect: mr,
	}, nil
}

func (r *Renderer) loadTile(tile model.Tile) (image.Image, error) {
	rd, err := r.tiles.FTile(tile)
	if err != nil {
		return nil, errors.Wrapf(err, "tile %s", tile.Key())
	}
	defer rd.Close()
	img, _, err := image.Decode(rd)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode tile %s", tile.Key())
	}
	return img, nil
}

// paste draws the tile into its cell, tiles of other sizes are scaled into the cell
func paste(dst *image.RGBA, tile image.Image, at image.Point) {
	cell := image.Rectangle{Min: at, Max: at.Add(image.Pt(mercantile.TileSize, mercantile.TileSize))}
	b := tile.Bounds()
	if b.Dx() == mercantile.TileSize && b.Dy() == mercantile.TileSize {
		draw.Draw(dst, cell, tile, b.Min, draw.Src)
		return
	}
	draw.BiLinear.Scale(dst, cell, tile, b, draw.Src, nil)
}

// WritePNG encodes the stitched image as png
func (v *View) WritePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, v.Image)
}
