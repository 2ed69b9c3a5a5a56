// Package config loads matchday's TOML configuration.
//
// # Configuration Discovery
//
// Load resolves settings in this order:
//
//  1. A .env file in the working directory, if present, is loaded into the
//     process environment (existing variables win)
//  2. The TOML file at the given path, or ~/.config/matchday/config.toml
//  3. MATCHDAY_SYNC_URL, MATCHDAY_FOOTBALL_API_KEY and
//     MATCHDAY_WEATHER_API_KEY override the matching file keys
//  4. Missing or zero fields fall back to defaults
//
// A missing config file is not an error. matchday runs fully offline with no
// configuration at all; sync, fixtures and weather simply stay disabled or
// fall back to placeholder data.
//
// # TOML Format
//
//	sync_url            = "https://script.google.com/macros/s/.../exec"
//	data_dir            = "~/.local/share/matchday"
//	push_delay_ms       = 2000
//	football_api_key    = ""
//	weather_api_key     = ""
//	weather_city        = "Falkirk"
//	weather_country     = "GB"
//	fixture_cache_hours = 4
//
// Tilde expansion is applied to the config path and data_dir.
//
// # Derived Paths
//
//   - DatabasePath: <data_dir>/matchday.db (game state and API caches)
//   - LogPath: <data_dir>/matchday.log (log output while the TUI owns the terminal)
package config
