package model

import "fmt"

// Tile address of a single tile of a provider
type Tile struct {
	Provider string
	Z        int
	X        int
	Y        int
}

func (t *Tile) String() string {
	return fmt.Sprintf("Provider: %s, Z:%d, X:%d, Y:%d", t.Provider, t.Z, t.X, t.Y)
}

// Key the provider independent key of the tile, z/x/y
func (t Tile) Key() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}
