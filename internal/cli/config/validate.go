package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"
)

// Validate checks struct-level constraints and reports every violation using
// configuration key names.
func (c *Config) Validate() error {
	validate, translator, err := newValidator()
	if err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		msgs := make([]string, 0, len(validationErrs))
		for _, e := range validationErrs {
			msgs = append(msgs, parentKey(e.Namespace())+e.Translate(translator))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		return nil, nil, fmt.Errorf("en translator was not found")
	}
	if err := enTranslation.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, nil, fmt.Errorf("translator was not registered: %w", err)
	}

	// report koanf keys instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return validate, translator, nil
}

// parentKey returns the enclosing key of a validator namespace:
// "Config.meta.url" -> "meta.", "Config.output" -> "".
func parentKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[1:len(parts)-1], ".") + "."
}
