// Package config loads lazyseq tool configuration.
//
// Values come from a YAML file, a .env file, LAZYSEQ_-prefixed environment
// variables and command-line flags, in increasing order of precedence.
//
// # Usage
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Chain ChainConfig `yaml:"chain" mapstructure:"chain"`
//	}
//
//	cfg, err := config.Load[Config]("lazyseq", config.WithFlags(fs, map[string]string{
//	    "logging.level": "log-level",
//	}))
package config
