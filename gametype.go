package loot

import "github.com/loot-core/libloot/internal/gameinfo"

// GameType identifies one of the supported moddable games (spec.md §3).
type GameType = gameinfo.GameType

// The closed set of supported games.
const (
	Morrowind          = gameinfo.Morrowind
	Oblivion           = gameinfo.Oblivion
	Skyrim             = gameinfo.Skyrim
	SkyrimSE           = gameinfo.SkyrimSE
	SkyrimVR           = gameinfo.SkyrimVR
	Fallout3           = gameinfo.Fallout3
	FalloutNV          = gameinfo.FalloutNV
	Fallout4           = gameinfo.Fallout4
	Fallout4VR         = gameinfo.Fallout4VR
	Starfield          = gameinfo.Starfield
	OpenMW             = gameinfo.OpenMW
	OblivionRemastered = gameinfo.OblivionRemastered
)

// GameRules is the computed set of per-game behavioural quirks used instead
// of scattering `if gameType == ...` checks throughout the sorting core
// (spec.md §9 design note).
type GameRules = gameinfo.Rules

// RulesForGame returns the GameRules value for a GameType.
func RulesForGame(t GameType) GameRules {
	return gameinfo.RulesFor(t)
}
