// Package builtin embeds the rooms that ship with the game and registers
// them at init.
package builtin

import (
	"embed"
	"path"

	"github.com/vovakirdan/latte-escape/internal/registry"
	"github.com/vovakirdan/latte-escape/internal/rooms"
)

//go:embed *.yaml
var files embed.FS

// Loader returns a loader over the embedded room files.
func Loader() *rooms.Loader {
	return rooms.NewFSLoader(files, ".")
}

func register(name string) {
	id := name[:len(name)-len(path.Ext(name))]
	registry.Register(id, func() (*rooms.Definition, error) {
		return Loader().LoadFile(name)
	})
}

func init() {
	register("garden.yaml")
	register("office.yaml")
	register("maze.yaml")
}
