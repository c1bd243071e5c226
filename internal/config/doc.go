// Package config loads and merges codesan configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CODESAN_PREFIX, CODESAN_FORMAT, CODESAN_SKIP,
//     etc.), falling back to a .env file in the working directory
//  3. Project file (.codesan.yaml in the working directory)
//  4. User config file ($XDG_CONFIG_HOME/codesan/config.json)
//  5. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the user config
// file, and [SetField] to update a single key.
package config
