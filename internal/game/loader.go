package game

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

// Paths helper for default/game/season files, relative to the loader's FS.
type Paths struct{}

func (Paths) DefaultPath() string {
	return path.Join("games", "default.yaml")
}
func (Paths) GamePath(game string) string {
	return path.Join("games", game+".yaml")
}
func (Paths) SeasonPath(game, season string) string {
	return path.Join("games", game, "seasons", season+".yaml")
}

// Loader reads YAML configs and merges default → game → season.
type Loader struct {
	fsys  fs.FS
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "game" or "game/season"
}

// NewLoader creates a config loader over fsys, e.g. os.DirFS(dir) or the
// embedded configs.FS.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys:  fsys,
		cache: make(map[string]RawConfig),
	}
}

var ErrUnknownGame = errors.New("unknown game")

// LoadMerged loads and merges default → game → season (season optional).
// It returns the merged RawConfig (without validation).
func (l *Loader) LoadMerged(game, season string) (RawConfig, error) {
	key := game
	if season != "" {
		key = game + "/" + season
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, _, err := l.readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	gameCfg, found, err := l.readYAML(l.paths.GamePath(game))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read game %s: %w", game, err)
	}
	if !found {
		return RawConfig{}, fmt.Errorf("%w: %s", ErrUnknownGame, game)
	}
	var seasonCfg RawConfig
	if season != "" {
		// season overlay is optional
		if seasonCfg, _, err = l.readYAML(l.paths.SeasonPath(game, season)); err != nil {
			return RawConfig{}, fmt.Errorf("read season %s/%s: %w", game, season, err)
		}
	}

	// Merge: default <- game <- season
	gameMerged := mergeRaw(defCfg, gameCfg)
	if gameMerged.Name == "" {
		gameMerged.Name = game
	}
	merged := mergeRaw(gameMerged, seasonCfg)

	l.mu.Lock()
	l.cache[game] = gameMerged
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Load merges, validates and resolves one variant.
func (l *Loader) Load(game, season string) (*catalog.Variant, error) {
	raw, err := l.LoadMerged(game, season)
	if err != nil {
		return nil, err
	}
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}
	return Resolve(raw), nil
}

// Games lists the variant names present under games/.
func (l *Loader) Games() ([]string, error) {
	matches, err := fs.Glob(l.fsys, path.Join("games", "*.yaml"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		name := path.Base(m)
		name = name[:len(name)-len(".yaml")]
		if name != "default" {
			out = append(out, name)
		}
	}
	return out, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func (l *Loader) readYAML(p string) (RawConfig, bool, error) {
	var cfg RawConfig
	b, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, fmt.Errorf("%s: %w", p, err)
	}
	return cfg, true, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Slices (rarities, entries, events, buffs, blocks, grants) are replaced whole.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Name != "" {
		out.Name = b.Name
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Currencies.Primary != "" {
		out.Currencies.Primary = b.Currencies.Primary
	}
	if b.Currencies.Secondary != "" {
		out.Currencies.Secondary = b.Currencies.Secondary
	}

	// economy
	if b.Economy.SpinCost != nil {
		out.Economy.SpinCost = b.Economy.SpinCost
	}
	if b.Economy.StartPrimary != nil {
		out.Economy.StartPrimary = b.Economy.StartPrimary
	}
	if b.Economy.StartSecondary != nil {
		out.Economy.StartSecondary = b.Economy.StartSecondary
	}
	if b.Economy.EquipCap != nil {
		out.Economy.EquipCap = b.Economy.EquipCap
	}
	if b.Economy.AccrualInterval != nil {
		out.Economy.AccrualInterval = b.Economy.AccrualInterval
	}

	// admin
	if b.Admin.Code != nil {
		out.Admin.Code = b.Admin.Code
	}
	if len(b.Admin.PrimaryGrants) > 0 {
		out.Admin.PrimaryGrants = append([]float64(nil), b.Admin.PrimaryGrants...)
	}
	if len(b.Admin.SecondaryGrants) > 0 {
		out.Admin.SecondaryGrants = append([]int64(nil), b.Admin.SecondaryGrants...)
	}

	// draw
	if b.Draw.Mode != "" {
		out.Draw.Mode = b.Draw.Mode
	}
	if len(b.Draw.Rarities) > 0 {
		out.Draw.Rarities = append([]RarityCfg(nil), b.Draw.Rarities...)
	}

	// events
	if b.Events.Policy != "" {
		out.Events.Policy = b.Events.Policy
	}
	if b.Events.Tick != nil {
		out.Events.Tick = b.Events.Tick
	}
	if len(b.Events.List) > 0 {
		out.Events.List = append([]EventCfg(nil), b.Events.List...)
	}

	if len(b.Entries) > 0 {
		out.Entries = append([]EntryCfg(nil), b.Entries...)
	}
	if len(b.Buffs) > 0 {
		out.Buffs = append([]BuffCfg(nil), b.Buffs...)
	}
	if len(b.LuckyBlocks) > 0 {
		out.LuckyBlocks = append([]LuckyCfg(nil), b.LuckyBlocks...)
	}

	// reel
	if b.Reel.Length != nil {
		out.Reel.Length = b.Reel.Length
	}
	if b.Reel.LandingMin != nil {
		out.Reel.LandingMin = b.Reel.LandingMin
	}
	if b.Reel.Frame != nil {
		out.Reel.Frame = b.Reel.Frame
	}
	if b.Reel.Duration != nil {
		out.Reel.Duration = b.Reel.Duration
	}

	return out
}
