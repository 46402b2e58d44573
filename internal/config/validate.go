package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	err := Validator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return janitorerr.Wrap(janitorerr.ErrConfigInvalid, "%s", err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return janitorerr.WithDetails(janitorerr.ErrConfigInvalid, map[string]string{
		"fields": strings.Join(fields, ", "),
	})
}
