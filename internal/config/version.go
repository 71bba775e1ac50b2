package config

import "fmt"

// set on build with -ldflags "-X github.com/willie68/go_mapview/internal/config.version=..."
var (
	version = "0.1.0"
	commit  = "dev"
)

// Version of the application
type Version struct {
	Version string
	Commit  string
}

func NewVersion() *Version {
	return &Version{
		Version: version,
		Commit:  commit,
	}
}

func (v Version) String() string {
	return fmt.Sprintf("go_mapview %s (%s)", v.Version, v.Commit)
}
