// Package config loads the warmupd YAML configuration.
//
// Values may reference environment variables as ${VAR}; a referenced
// variable that is not set is an error, and $$ yields a literal $. The
// warmup section becomes a plan.Customizer, so file-based settings go through
// the same builder as settings made in code.
package config
