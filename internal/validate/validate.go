// Package validate evaluates the form field rules used before a project is
// created: required, minLength, maxLength, min and max.
package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rules configures the constraints for one value. Length rules apply to
// strings, Min/Max to integers; a rule that does not fit the value's type is
// ignored.
type Rules struct {
	Required  bool
	MinLength *int
	MaxLength *int
	Min       *int
	Max       *int
}

// Field is a named value plus its rules.
type Field struct {
	Name  string
	Value any
	Rules Rules
}

func Int(n int) *int { return &n }

var v = validator.New()

// Valid reports whether f satisfies every configured rule.
func Valid(f Field) bool {
	return Check(f) == nil
}

// Check validates f and describes the first failing rule.
func Check(f Field) error {
	value, tags := normalize(f)
	if len(tags) == 0 {
		return nil
	}
	err := v.Var(value, strings.Join(tags, ","))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	return fieldError{field: f.Name, tag: verrs[0].Tag(), param: verrs[0].Param()}
}

// CheckAll validates every field and joins the failures.
func CheckAll(fields ...Field) error {
	var errs []error
	for _, f := range fields {
		if err := Check(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func normalize(f Field) (any, []string) {
	var tags []string
	switch val := f.Value.(type) {
	case string:
		val = strings.TrimSpace(val)
		if f.Rules.Required {
			tags = append(tags, "required")
		} else if val == "" {
			// Optional and empty: length rules do not apply.
			return val, nil
		}
		if f.Rules.MinLength != nil {
			tags = append(tags, "min="+strconv.Itoa(*f.Rules.MinLength))
		}
		if f.Rules.MaxLength != nil {
			tags = append(tags, "max="+strconv.Itoa(*f.Rules.MaxLength))
		}
		return val, tags
	case int:
		// With a lower bound the range rule reports zero more precisely.
		if f.Rules.Required && f.Rules.Min == nil {
			tags = append(tags, "required")
		}
		if f.Rules.Min != nil {
			tags = append(tags, "gte="+strconv.Itoa(*f.Rules.Min))
		}
		if f.Rules.Max != nil {
			tags = append(tags, "lte="+strconv.Itoa(*f.Rules.Max))
		}
		return val, tags
	default:
		if f.Rules.Required {
			tags = append(tags, "required")
		}
		return val, tags
	}
}

type fieldError struct {
	field string
	tag   string
	param string
}

func (e fieldError) Error() string {
	switch e.tag {
	case "required":
		return fmt.Sprintf("%s is required", e.field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.field, e.param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.field, e.param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.field, e.param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", e.field, e.param)
	default:
		return fmt.Sprintf("%s failed %s", e.field, e.tag)
	}
}
