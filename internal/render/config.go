package render

// Config default values of a render
type Config struct {
	Provider string  `yaml:"provider"`
	Zoom     int     `yaml:"zoom"`
	Span     float64 `yaml:"span"`     // half size of the covered area in degrees
	Location string  `yaml:"location"` // start location, "lat, lon"
	Marker   string  `yaml:"marker"`   // marker icon file
}

const (
	DefaultZoom     = 15
	DefaultSpan     = 0.02
	DefaultLocation = "1.34047, 103.70935"
)

func DefaultConfig() Config {
	return Config{
		Provider: "local",
		Zoom:     DefaultZoom,
		Span:     DefaultSpan,
		Location: DefaultLocation,
	}
}
