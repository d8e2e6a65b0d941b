package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
)

// NewValidator returns a validator with the "timeofday" rule registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		return model.ValidTimeOfDay(fl.Field().String())
	})
	return v
}

// Validate checks raw arguments against params and returns them coerced to
// their declared types. Errors are *store.ValidationError.
func Validate(v *validator.Validate, params []host.Param, raw map[string]any) (Args, error) {
	args := Args{}
	for _, p := range params {
		value, present := raw[p.Name]
		if !present || (value == nil && !p.Nullable) {
			if p.Required {
				return nil, fieldError(p.Name, "%s is required", p.Name)
			}
			continue
		}
		if value == nil {
			args[p.Name] = nil
			continue
		}

		coerced, err := coerce(p, value)
		if err != nil {
			return nil, err
		}
		if err := checkRules(v, p, coerced); err != nil {
			return nil, err
		}
		args[p.Name] = coerced
	}
	return args, nil
}

func coerce(p host.Param, value any) (any, error) {
	switch p.Type {
	case host.ParamString:
		s, ok := value.(string)
		if !ok {
			return nil, fieldError(p.Name, "%s must be a string", p.Name)
		}
		return s, nil

	case host.ParamNumber:
		n, ok := toInt(value)
		if !ok {
			return nil, fieldError(p.Name, "%s must be an integer", p.Name)
		}
		return n, nil

	case host.ParamBoolean:
		switch b := value.(type) {
		case bool:
			return b, nil
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed, nil
			}
		}
		return nil, fieldError(p.Name, "%s must be a boolean", p.Name)
	}
	return value, nil
}

func toInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func checkRules(v *validator.Validate, p host.Param, value any) error {
	var tags []string
	if len(p.Enum) > 0 {
		tags = append(tags, "oneof="+strings.Join(p.Enum, " "))
	}
	if p.Rules != "" {
		tags = append(tags, p.Rules)
	}
	if len(tags) == 0 {
		return nil
	}

	err := v.Var(value, strings.Join(tags, ","))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fieldError(p.Name, "%s is invalid", p.Name)
	}
	return ruleMessage(p, verrs[0])
}

func ruleMessage(p host.Param, fe validator.FieldError) error {
	switch fe.Tag() {
	case "oneof":
		return fieldError(p.Name, "%s must be one of %s", p.Name, strings.Join(p.Enum, ", "))
	case "min":
		if fe.Param() == "0" {
			return fieldError(p.Name, "%s must not be negative", p.Name)
		}
		return fieldError(p.Name, "%s must be at least %s", p.Name, fe.Param())
	case "max":
		return fieldError(p.Name, "%s must be at most %s", p.Name, fe.Param())
	case "timeofday":
		return fieldError(p.Name, "%s must be HH:MM or HH:MM:SS", p.Name)
	}
	return fieldError(p.Name, "%s is invalid", p.Name)
}

func fieldError(field, format string, args ...any) error {
	return &store.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
