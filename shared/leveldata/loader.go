package leveldata

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

var ErrNoLevels = errors.New("no .tmx files found")

const (
	groupWalls    = "Walls"
	groupSpawns   = "PlayerSpawn"
	groupPlatform = "PlatformPath"

	defaultPlatformSpeed = 4.0
)

// LoadArena parses a TMX file. It takes an fs.FS so callers can pass embed.FS
// or os.DirFS.
func LoadArena(fsys fs.FS, tmxPath string) (*ArenaData, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}
	if levelMap.TileWidth <= 0 || levelMap.TileHeight <= 0 {
		return nil, fmt.Errorf("load TMX %s: invalid tile size %dx%d", tmxPath, levelMap.TileWidth, levelMap.TileHeight)
	}

	tileW := float64(levelMap.TileWidth)
	tileH := float64(levelMap.TileHeight)
	data := &ArenaData{
		Width: float64(levelMap.Width),
		Depth: float64(levelMap.Height),
		Platform: PlatformPath{
			Speed: defaultPlatformSpeed,
		},
	}
	toX := func(px float64) float64 { return px/tileW - data.Width/2 }
	toZ := func(py float64) float64 { return py/tileH - data.Depth/2 }

	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case groupWalls:
			for _, o := range og.Objects {
				data.Walls = append(data.Walls, Rect{
					X:    toX(o.X),
					Z:    toZ(o.Y),
					W:    o.Width / tileW,
					D:    o.Height / tileH,
					Name: o.Name,
				})
			}
		case groupSpawns:
			for _, o := range og.Objects {
				data.SpawnPoints = append(data.SpawnPoints, SpawnPoint{
					X:     toX(o.X),
					Z:     toZ(o.Y),
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		case groupPlatform:
			if v := og.Properties.GetFloat("speed"); v > 0 {
				data.Platform.Speed = v
			}
			if v := og.Properties.GetFloat("pause"); v > 0 {
				data.Platform.Pause = v
			}
			for _, o := range og.Objects {
				data.Platform.Nodes = append(data.Platform.Nodes, PathNode{
					X:     toX(o.X),
					Z:     toZ(o.Y),
					Order: o.Properties.GetInt("order"),
				})
			}
		}
	}

	sort.SliceStable(data.SpawnPoints, func(i, j int) bool {
		return data.SpawnPoints[i].Index < data.SpawnPoints[j].Index
	})
	sort.SliceStable(data.Platform.Nodes, func(i, j int) bool {
		return data.Platform.Nodes[i].Order < data.Platform.Nodes[j].Order
	})

	return data, nil
}

// LoadAllArenas discovers all .tmx files in levelsDir within fsys, loads each,
// and returns a map keyed by stem name plus a sorted list of names.
func LoadAllArenas(fsys fs.FS, levelsDir string) (map[string]*ArenaData, []string, error) {
	pattern := levelsDir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", levelsDir, ErrNoLevels)
	}

	arenas := make(map[string]*ArenaData, len(matches))
	names := make([]string, 0, len(matches))

	for _, path := range matches {
		data, err := LoadArena(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), ".tmx")
		arenas[stem] = data
		names = append(names, stem)
	}

	sort.Strings(names)
	return arenas, names, nil
}
