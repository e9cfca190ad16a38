// Package config loads the daemon configuration file and validates the plugin
// credentials read from the host runtime settings.
package config
