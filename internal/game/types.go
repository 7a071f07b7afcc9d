// types.go
package game

import "time"

// RawConfig is one YAML layer; unset fields are nil and inherit from the
// layer below.
type RawConfig struct {
	Version     string      `yaml:"version"`
	Name        string      `yaml:"name"`
	Notes       string      `yaml:"notes,omitempty"`
	Currencies  CurrencyCfg `yaml:"currencies"`
	Economy     EconomyCfg  `yaml:"economy"`
	Admin       AdminCfg    `yaml:"admin"`
	Draw        DrawCfg     `yaml:"draw"`
	Events      EventsCfg   `yaml:"events"`
	Entries     []EntryCfg  `yaml:"entries,omitempty"`
	Buffs       []BuffCfg   `yaml:"buffs,omitempty"`
	LuckyBlocks []LuckyCfg  `yaml:"lucky_blocks,omitempty"`
	Reel        ReelCfg     `yaml:"reel"`
}

type CurrencyCfg struct {
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
}

type EconomyCfg struct {
	SpinCost        *float64       `yaml:"spin_cost,omitempty"`
	StartPrimary    *float64       `yaml:"start_primary,omitempty"`
	StartSecondary  *int64         `yaml:"start_secondary,omitempty"`
	EquipCap        *int           `yaml:"equip_cap,omitempty"`
	AccrualInterval *time.Duration `yaml:"accrual_interval,omitempty"`
}

type AdminCfg struct {
	Code            *string   `yaml:"code,omitempty"`
	PrimaryGrants   []float64 `yaml:"primary_grants,omitempty"`
	SecondaryGrants []int64   `yaml:"secondary_grants,omitempty"`
}

type DrawCfg struct {
	Mode     string      `yaml:"mode,omitempty"` // "percent" | "normalized"
	Rarities []RarityCfg `yaml:"rarities,omitempty"`
}

type RarityCfg struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name,omitempty"`
	Weight float64 `yaml:"weight"`
}

type EventsCfg struct {
	Policy string         `yaml:"policy,omitempty"` // "none" | "session" | "rotate" | "clear"
	Tick   *time.Duration `yaml:"tick,omitempty"`
	List   []EventCfg     `yaml:"list,omitempty"`
}

type EventCfg struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Emoji      string        `yaml:"emoji,omitempty"`
	Multiplier float64       `yaml:"multiplier"`
	Boosted    []string      `yaml:"boosted"`
	Chance     float64       `yaml:"chance,omitempty"`
	Duration   time.Duration `yaml:"duration,omitempty"`
}

type EntryCfg struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Rarity    string  `yaml:"rarity"`
	Primary   float64 `yaml:"primary"`   // coins per second while equipped
	Secondary int64   `yaml:"secondary"` // sale value
	Emoji     string  `yaml:"emoji,omitempty"`
	Pool      string  `yaml:"pool,omitempty"`
}

type BuffCfg struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Emoji      string        `yaml:"emoji,omitempty"`
	Cost       int64         `yaml:"cost"`
	Duration   time.Duration `yaml:"duration"`
	Kind       string        `yaml:"kind"` // "luck" | "speed" | "sale"
	Multiplier float64       `yaml:"multiplier"`
	Boosted    []string      `yaml:"boosted,omitempty"`
}

type LuckyCfg struct {
	ID    string    `yaml:"id"`
	Name  string    `yaml:"name"`
	Emoji string    `yaml:"emoji,omitempty"`
	Cost  float64   `yaml:"cost"`
	Drops []DropCfg `yaml:"drops"`
}

type DropCfg struct {
	Entry  string  `yaml:"entry"`
	Chance float64 `yaml:"chance"`
}

type ReelCfg struct {
	Length     *int           `yaml:"length,omitempty"`
	LandingMin *int           `yaml:"landing_min,omitempty"`
	Frame      *time.Duration `yaml:"frame,omitempty"`
	Duration   *time.Duration `yaml:"duration,omitempty"`
}
