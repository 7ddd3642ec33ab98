package upload

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var epsgPattern = regexp.MustCompile(`^(?i:epsg:)?([0-9]{4,6})$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("epsg", func(fl validator.FieldLevel) bool {
		return epsgPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

type saveForm struct {
	LayerTitle  string `form:"layer_title" validate:"max=255"`
	Abstract    string `form:"abstract" validate:"max=2000"`
	Permissions string `form:"permissions" validate:"omitempty,json"`
}

type srsForm struct {
	SRS string `form:"srs" validate:"required,epsg"`
}

type timeForm struct {
	TimeAttribute          string `form:"time_attribute"`
	TextAttribute          string `form:"text_attribute"`
	TextAttributeFormat    string `form:"text_attribute_format"`
	YearAttribute          string `form:"year_attribute"`
	EndTimeAttribute       string `form:"end_time_attribute"`
	EndTextAttribute       string `form:"end_text_attribute"`
	EndTextAttributeFormat string `form:"end_text_attribute_format"`
	EndYearAttribute       string `form:"end_year_attribute"`
	PresentationStrategy   string `form:"presentation_strategy" validate:"omitempty,oneof=LIST DISCRETE_INTERVAL CONTINUOUS_INTERVAL"`
	PrecisionValue         int    `form:"precision_value" validate:"gte=0"`
	PrecisionStep          string `form:"precision_step" validate:"omitempty,oneof=years months days hours minutes seconds"`
}

// normalizeSRS turns "4326" or "epsg:4326" into "EPSG:4326"
func normalizeSRS(value string) string {
	match := epsgPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return ""
	}
	return "EPSG:" + match[1]
}

// fieldMessages flattens validator errors into one message per field
func fieldMessages(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, fieldMessage(fieldErr))
	}
	return messages
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s: This field is required.", fieldErr.Field())
	case "max":
		return fmt.Sprintf("%s: Ensure this value has at most %s characters.", fieldErr.Field(), fieldErr.Param())
	case "json":
		return fmt.Sprintf("%s: Enter a valid JSON document.", fieldErr.Field())
	case "epsg":
		return fmt.Sprintf("%s: Enter an EPSG code such as EPSG:4326.", fieldErr.Field())
	case "oneof":
		return fmt.Sprintf("%s: Select one of %s.", fieldErr.Field(), fieldErr.Param())
	default:
		return fmt.Sprintf("%s: invalid value (%s).", fieldErr.Field(), fieldErr.Tag())
	}
}
