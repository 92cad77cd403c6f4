package main

import (
	"github.com/kbukum/lazyseq/config"
	"github.com/kbukum/lazyseq/validation"
)

// Config is the lazyseq command configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Chain                ChainConfig `yaml:"chain" mapstructure:"chain"`
}

// ChainConfig selects the stages and the terminal of the chain. Limits are
// passed to the engine unchecked so it reports invalid ones itself.
type ChainConfig struct {
	Drop   float64 `yaml:"drop" mapstructure:"drop"`
	Take   float64 `yaml:"take" mapstructure:"take"`
	Grep   string  `yaml:"grep" mapstructure:"grep"`
	Upper  bool    `yaml:"upper" mapstructure:"upper"`
	Words  bool    `yaml:"words" mapstructure:"words"`
	Number bool    `yaml:"number" mapstructure:"number"`
	Count  bool    `yaml:"count" mapstructure:"count"`
	First  string  `yaml:"first" mapstructure:"first"`
	Max    int     `yaml:"max" mapstructure:"max"`
	Async  bool    `yaml:"async" mapstructure:"async"`
	// RunID replaces the generated run identifier in logs and spans.
	RunID string `yaml:"run_id" mapstructure:"run_id"`
}

// Validate checks the struct tags of the whole configuration, then the chain
// options.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return c.Chain.validate()
}

func (c ChainConfig) validate() error {
	return validation.New().
		NonNegative("chain.max", c.Max).
		SingleLine("chain.grep", c.Grep).
		SingleLine("chain.first", c.First).
		AtMostOne("chain", []string{"count", "first", "max"}, c.Count, c.First != "", c.Max > 0).
		OptionalUUID("chain.run_id", c.RunID).
		Validate()
}
