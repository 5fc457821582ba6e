// Package config implements spec §6's configuration flags: a small
// struct decoded from YAML, with no CLI flag parsing (CLI wiring is
// explicitly out of scope per spec §1).
//
// Grounded on the original NunaInc/nudl analyzer's four ABSL_FLAGs
// (named_object.cc's nudl_short_analysis_proto, type_utils.cc's
// nudl_accept_abstract_function_objects, types.cc's
// nudl_non_null_for_nullable_value_default, and
// python_converter.cc's PythonConverter(bindings_on_use) constructor
// argument) folded into one struct, decoded the way the teacher decodes
// its own small structs via gopkg.in/yaml.v3.
package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Config is the closed set of compile-time flags from spec §6
// "Configuration flags" / §5 "a set of compile-time configuration
// flags". Every flag defaults to false, matching the original's
// ABSL_FLAG defaults.
type Config struct {
	// ShortProto emits compact type references rather than full
	// structural protos (nudl_short_analysis_proto).
	ShortProto bool `yaml:"short_proto"`

	// NonNullDefaultForNullable: when true, the default value of
	// Nullable<T> is default(T); otherwise it is the null literal
	// (nudl_non_null_for_nullable_value_default).
	NonNullDefaultForNullable bool `yaml:"non_null_default_for_nullable"`

	// AcceptAbstractLambdas: when true, allows a function-typed variable
	// to hold an abstract function, issuing a diagnostic rather than an
	// error (nudl_accept_abstract_function_objects).
	AcceptAbstractLambdas bool `yaml:"accept_abstract_lambdas"`

	// BindingsOnUse: emit each concrete function binding in the module
	// that uses it, rather than in the module that declares the
	// abstract function (the PythonConverter constructor's
	// bindings_on_use argument).
	BindingsOnUse bool `yaml:"bindings_on_use"`
}

// Default returns the zero-value Config, every flag false.
func Default() *Config { return &Config{} }

// Load decodes a Config from YAML read from r, starting from the
// defaults (so a partial document only overrides the fields it names).
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return cfg, nil
}
