package easyHttp

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

var (
	sslCertTypes = []string{"PEM", "DER"}
	sslKeyTypes  = []string{"PEM", "DER", "ENG"}
)

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		fields := make([]string, 0, len(verrors))
		for _, verror := range verrors {
			fields = append(fields, fmt.Sprintf("%s must be %s %s", verror.Namespace(), verror.Tag(), verror.Param()))
		}
		return errors.Wrap(ErrInvalidArgument, strings.Join(fields, ", "))
	}
	return nil
}

// validateOneOf fails with ErrInvalidArgument unless value is one of allowed.
func validateOneOf(what, value string, allowed []string) error {
	if err := validate.Var(value, "oneof="+strings.Join(allowed, " ")); err != nil {
		return errors.Wrapf(ErrInvalidArgument, "invalid %s: '%s'", what, value)
	}
	return nil
}
