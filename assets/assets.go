package assets

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/automoto/anticipation-mp/shared/leveldata"
)

const DefaultArena = "arena"

//go:embed levels/*.tmx
var levelFS embed.FS

// LevelFS exposes the embedded arenas rooted above the levels directory.
func LevelFS() fs.FS {
	return levelFS
}

// LoadArena loads an embedded arena by stem name.
func LoadArena(name string) (*leveldata.ArenaData, error) {
	if name == "" {
		name = DefaultArena
	}
	data, err := leveldata.LoadArena(levelFS, "levels/"+name+".tmx")
	if err != nil {
		return nil, fmt.Errorf("arena %q: %w", name, err)
	}
	return data, nil
}

// ListArenaNames returns the sorted stem names of the embedded arenas.
func ListArenaNames() ([]string, error) {
	_, names, err := leveldata.LoadAllArenas(levelFS, "levels")
	if err != nil {
		return nil, err
	}
	return names, nil
}
