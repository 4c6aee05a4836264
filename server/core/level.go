package core

import (
	"fmt"
	"os"

	"github.com/automoto/anticipation-mp/assets"
	"github.com/automoto/anticipation-mp/shared/arena"
	"github.com/automoto/anticipation-mp/shared/leveldata"
	log "github.com/sirupsen/logrus"
)

// LoadArena builds the collision arena for name. With an empty assetsDir the
// embedded arenas are used, otherwise levels/<name>.tmx under assetsDir.
func LoadArena(assetsDir, name string) (*arena.Arena, error) {
	if name == "" {
		name = assets.DefaultArena
	}

	var (
		data *leveldata.ArenaData
		err  error
	)
	if assetsDir == "" {
		data, err = assets.LoadArena(name)
	} else {
		data, err = leveldata.LoadArena(os.DirFS(assetsDir), "levels/"+name+".tmx")
	}
	if err != nil {
		return nil, fmt.Errorf("load arena: %w", err)
	}

	log.Infof("[level] loaded %s: %d walls, %d spawn points, %d path nodes, %.0fx%.0f",
		name, len(data.Walls), len(data.SpawnPoints), len(data.Platform.Nodes), data.Width, data.Depth)
	return arena.New(data), nil
}
