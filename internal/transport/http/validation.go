package http

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	registerOnce sync.Once
)

var sortKeys = map[string]bool{
	"newest":     true,
	"price_asc":  true,
	"price-asc":  true,
	"price_desc": true,
	"price-desc": true,
}

// registerValidations adds the catalog rules to gin's validator engine.
func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("slug", validateSlug)
		_ = v.RegisterValidation("sortkey", validateSortKey)
	})
}

// fieldName reports fields by their json or form name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validateSortKey(fl validator.FieldLevel) bool {
	return sortKeys[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
}

func fieldErrors(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: validationMessage(e),
		})
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "slug":
		return e.Field() + " must be lowercase letters and digits separated by single dashes"
	case "sortkey":
		return e.Field() + " must be one of: newest, price_asc, price_desc"
	default:
		return e.Field() + " is invalid"
	}
}

// splitList accepts both repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
