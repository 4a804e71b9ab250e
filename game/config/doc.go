// Package config provides the map catalogue for Hospital Run.
//
// The config package handles:
//   - Loading maps from JSON files in the configs directory
//   - Validation through the engine's map rules
//   - Default map selection
//   - Map discovery and listing
//
// Map Format:
//
// Each map is a JSON file with a name, description, level, grid_size and a
// square layout of token rows (P=player, H=hospital, Z=zombie,
// T=tracking zombie, G=garlic, C=crossbow, '.' or ' ' empty). The level
// (basic, intermediate or advanced) decides which tokens are allowed and
// which rules the game plays by; it defaults to advanced.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific map
//	mapConfig, err := manager.LoadConfig("garlic_run")
//
//	// List available maps
//	configs, err := manager.ListConfigs()
//
// The default map is classic.json when present, otherwise the first valid
// map in the directory, otherwise a built-in map.
package config
