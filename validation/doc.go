// Package validation checks lazyseq tool configuration.
//
// ValidateStruct applies go-playground/validator tags; Validator collects
// the checks tags cannot express. Both report a single INVALID_CONFIG error
// listing every failing field.
//
//	if err := validation.ValidateStruct(cfg); err != nil {
//	    return err
//	}
//
//	err := validation.New().
//	    NonNegative("chain.max", c.Max).
//	    SingleLine("chain.grep", c.Grep).
//	    AtMostOne("chain", []string{"count", "first", "max"}, c.Count, c.First != "", c.Max > 0).
//	    Validate()
package validation
