// Package config loads and validates solvenv configuration from YAML and
// watches the license file for out-of-band changes.
package config
