package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/kbukum/lazyseq/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their configuration key. Squashed and skipped
		// fields keep their Go name and are dropped by fieldPath.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, opts, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
			switch {
			case name == "-" || strings.Contains(opts, "squash"):
				return ""
			case name == "":
				return strings.ToLower(fld.Name)
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates s using its `validate` struct tags.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.InvalidConfig("validation failed", nil).WithCause(err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, FieldError{Field: fieldPath(e), Message: formatValidationError(e)})
	}
	return fieldsError(fields)
}

// fieldPath drops the root type name and keeps the configuration-key
// segments of the namespace, so nested fields read as "logging.level".
func fieldPath(e validator.FieldError) string {
	segs := strings.Split(e.Namespace(), ".")
	keys := lo.Filter(segs[1:], func(seg string, _ int) bool {
		r, _ := utf8.DecodeRuneInString(seg)
		return !unicode.IsUpper(r)
	})
	if len(keys) == 0 {
		return e.Field()
	}
	return strings.Join(keys, ".")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "hostname_port":
		return "must be host:port"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
