package service

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// MinTemplateID and MaxTemplateID bound the fixed template set.
	MinTemplateID = 1
	MaxTemplateID = 8

	// DefaultStartTime is used by sync for tasks without a start time.
	DefaultStartTime = "09:00"
)

// Rules shared by the binding tags on the input structs and the patch checks.
const (
	nameRules     = "required,max=100"
	durationRules = "gt=0"
	colorRules    = "len=7,hexcolor"
	clockRules    = "required,clock"
	templateRules = "min=1,max=8"
)

// Palette is the set of colors handed out when none is supplied.
// The last one is reserved for free time in the front end.
var Palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEAA7", "#74B9FF", "#A29BFE", "#FD79A8",
	"#FDCB6E", "#6C5CE7", "#00B894", "#2C3E50",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	if err := RegisterRules(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterRules installs the custom "clock" tag and json field names on v.
// The HTTP layer calls it on gin's validator so both report the same way.
func RegisterRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation("clock", isClock)
}

// isClock accepts a 24h HH:MM time, ignoring surrounding spaces.
// Blank passes; pair with required where it matters.
func isClock(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// AsValidation turns validator failures into a ValidationError naming the first bad field.
// Other errors are returned unchanged.
func AsValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Message: describe(fe.Field(), fe.Tag(), fe.Param())}
	}
	return err
}

func describe(field, tag, param string) string {
	switch {
	case tag == "required":
		return field + " is required"
	case field == "name" && tag == "max":
		return fmt.Sprintf("name must be at most %s characters", param)
	case field == "duration":
		return "duration must be a positive number of minutes"
	case field == "color":
		return "color must be in #RRGGBB form"
	case field == "start_time":
		return "start_time must be in HH:MM form"
	case field == "template_id":
		return fmt.Sprintf("template_id must be between %d and %d", MinTemplateID, MaxTemplateID)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, tag)
	}
}

func checkStruct(input any) error {
	return AsValidation(validate.Struct(input))
}

func checkVar(field string, value any, rules string) error {
	err := validate.Var(value, rules)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Message: describe(field, fieldErrs[0].Tag(), fieldErrs[0].Param())}
	}
	return err
}

func randomColor() string {
	return Palette[rand.IntN(len(Palette))]
}

// checkName trims name and validates what is left.
func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := checkVar("name", name, nameRules); err != nil {
		return "", err
	}
	return name, nil
}

// CheckTemplateID validates a template id against the fixed set.
func CheckTemplateID(id int) error {
	return checkVar("template_id", id, templateRules)
}
