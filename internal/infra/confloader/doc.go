// Package confloader loads daemon configuration on top of koanf.
//
// The index daemon seeds a config struct with its defaults, then Load
// layers the optional YAML file and GHOSTTAPE_-prefixed environment
// variables over it, later sources winning:
//
//	cfg := indexd.Default()
//	loader := confloader.NewLoader(confloader.WithConfigFile(path))
//	err := loader.Load(cfg)
//
// Environment variables use a double underscore between nesting levels
// so key names may themselves contain underscores, for example
// GHOSTTAPE_GHOST_DIR and GHOSTTAPE_METRICS__ADDRESS.
package confloader
