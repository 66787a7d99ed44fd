package renderer

// Config tunes the raster output of the renderer.
type Config struct {
	OutputDir     string
	QuietZone     int // In modules
	RecoveryLevel int // 1 (Low) .. 4 (Highest), 0 picks by logo presence
}

var Default = &Config{
	OutputDir:     "exports",
	QuietZone:     4,
	RecoveryLevel: 0,
}
