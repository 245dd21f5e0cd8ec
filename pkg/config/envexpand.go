package config

import "os"

// ExpandEnv expands ${VAR} / $VAR references in YAML content using the
// standard library, grounded verbatim on the teacher's config.ExpandEnv.
// Missing variables expand to empty string; Validate catches required
// fields left empty by a missing variable.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
