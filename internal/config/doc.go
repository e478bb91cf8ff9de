// Package config defines the bridge's YAML configuration file: serial
// port parameters, network role, device type and optional hardening
// knobs. Values loaded from the file are overridden by CLI flags; a
// missing file yields defaults.
package config
