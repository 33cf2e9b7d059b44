// Command lootsort computes and optionally applies a load order for one
// game installation, exercising the library end to end from the command
// line (spec.md §9 "thin CLI wrapper" design note).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	loot "github.com/loot-core/libloot"
	"github.com/loot-core/libloot/internal/logging"
)

type config struct {
	gameType gameFlag
	gamePath string
	apply    bool
	verbose  bool
	cacheDir string
}

func loadConfig() (config, error) {
	var cfg config
	flag.Var(&cfg.gameType, "game", "game type (skyrimse, skyrimvr, skyrim, oblivion, obliviremastered, fallout3, falloutnv, fallout4, fallout4vr, starfield, morrowind, openmw)")
	flag.StringVar(&cfg.gamePath, "path", "", "path to the game's install directory")
	flag.BoolVar(&cfg.apply, "apply", false, "write the computed order back to the load order file")
	flag.BoolVar(&cfg.verbose, "verbose", false, "enable debug logging")
	flag.StringVar(&cfg.cacheDir, "cache-dir", "", "directory for the persistent plugin cache database; empty disables it")
	flag.Parse()

	if cfg.gamePath == "" {
		return cfg, fmt.Errorf("-path is required")
	}
	if !cfg.gameType.set {
		return cfg, fmt.Errorf("-game is required")
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	color := isatty.IsTerminal(os.Stdout.Fd())

	var persistentCachePath string
	if cfg.cacheDir != "" {
		persistentCachePath = filepath.Join(cfg.cacheDir, "plugins.db")
	}

	handle, err := loot.NewGameHandle(loot.GameHandleConfig{
		GameType:            cfg.gameType.value,
		GamePath:            cfg.gamePath,
		PersistentCachePath: persistentCachePath,
	})
	if err != nil {
		log.Fatalf("Failed to initialise game handle: %v", err)
	}
	defer handle.Close()

	order, err := handle.GetLoadOrder()
	if err != nil {
		log.Fatalf("Failed to read current load order: %v", err)
	}

	paths := make([]string, 0, len(order))
	dataPath := cfg.gamePath
	if cfg.gameType.value != loot.OpenMW {
		dataPath = cfg.gamePath + string(os.PathSeparator) + "Data"
	}
	for _, name := range order {
		paths = append(paths, dataPath+string(os.PathSeparator)+name.String())
	}
	if err := handle.LoadPlugins(paths, true); err != nil {
		log.Printf("Warning: some plugins failed to load: %v", err)
	}

	sorted, err := handle.Sort(order)
	if err != nil {
		log.Fatalf("Failed to compute load order: %v", err)
	}

	printOrder(sorted, order, color)

	if cfg.apply {
		if err := handle.SetLoadOrder(sorted); err != nil {
			log.Fatalf("Failed to write load order: %v", err)
		}
		log.Println("Load order written.")
	}
}

func printOrder(sorted, original []loot.PluginFilename, color bool) {
	originalPos := make(map[string]int, len(original))
	for i, name := range original {
		originalPos[name.Folded()] = i
	}

	for i, name := range sorted {
		moved := originalPos[name.Folded()] != i
		if color && moved {
			fmt.Printf("\033[33m%3d. %s\033[0m\n", i, name.String())
			continue
		}
		fmt.Printf("%3d. %s\n", i, name.String())
	}
}

// gameFlag adapts loot.GameType to flag.Value so -game accepts the same
// lowercase spellings a mod manager's config file would use.
type gameFlag struct {
	value loot.GameType
	set   bool
}

func (f *gameFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%v", f.value)
}

func (f *gameFlag) Set(s string) error {
	gt, ok := gameTypesByFlag[s]
	if !ok {
		return fmt.Errorf("unrecognised game type: %s", s)
	}
	f.value = gt
	f.set = true
	return nil
}

var gameTypesByFlag = map[string]loot.GameType{
	"morrowind":         loot.Morrowind,
	"oblivion":          loot.Oblivion,
	"obliviremastered":  loot.OblivionRemastered,
	"skyrim":            loot.Skyrim,
	"skyrimse":          loot.SkyrimSE,
	"skyrimvr":          loot.SkyrimVR,
	"fallout3":          loot.Fallout3,
	"falloutnv":         loot.FalloutNV,
	"fallout4":          loot.Fallout4,
	"fallout4vr":        loot.Fallout4VR,
	"starfield":         loot.Starfield,
	"openmw":            loot.OpenMW,
}
