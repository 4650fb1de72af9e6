package carriers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gestrans/gestrans-backend/pkg/enums"
	"github.com/go-playground/validator/v10"
)

var (
	nifPattern = regexp.MustCompile(`^[0-9]{9}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

// FieldErrors maps canonical field names to user-facing messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return "invalid carrier: " + strings.Join(parts, "; ")
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "nif", func(fl validator.FieldLevel) bool {
			return nifPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "carrier_kind", func(fl validator.FieldLevel) bool {
			return enums.CarrierKind(fl.Field().String()).IsValid()
		})
		mustRegister(v, "ambito", func(fl validator.FieldLevel) bool {
			return enums.Scope(fl.Field().String()).IsValid()
		})
		mustRegister(v, "modalidade", func(fl validator.FieldLevel) bool {
			return enums.Modality(fl.Field().String()).IsValid()
		})
		mustRegister(v, "tiposervico", func(fl validator.FieldLevel) bool {
			return enums.ServiceType(fl.Field().String()).IsValid()
		})
		mustRegister(v, "tipocarga", func(fl validator.FieldLevel) bool {
			return enums.CargoType(fl.Field().String()).IsValid()
		})
		mustRegister(v, "zonacobertura", func(fl validator.FieldLevel) bool {
			return enums.CoverageZone(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate checks the record rules and returns FieldErrors when any fails.
func Validate(f Fields) error {
	err := validatorInstance().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messageFor(field, fe)
	}
	return out
}

func messageFor(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "is required"
	case "nif":
		return "must be exactly 9 digits"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "carrier_kind":
		return fmt.Sprintf("must be one of %s", strings.Join(enums.CarrierKindValues(), ", "))
	case "unique":
		return "must not repeat values"
	default:
		allowed, _ := vocabulary(field)
		return fmt.Sprintf("contains %q, allowed: %s", fe.Value(), strings.Join(allowed, ", "))
	}
}
