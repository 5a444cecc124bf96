// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (CONFSTORE_ prefix)
//  3. Configuration file (YAML)
//  4. Defaults
//
// Environment names map to keys by lowercasing and turning a double
// underscore into a level separator, so single underscores survive:
//
//	CONFSTORE_CONFIG_STORE_URL     -> config_store_url
//	CONFSTORE_PORTS__LM_CMD_PORT   -> ports.lm_cmd_port
package confloader
