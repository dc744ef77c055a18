package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Validator checks request payloads before they are turned into domain values
type Validator struct {
	validate *validator.Validate
	channels map[string]struct{}
	names    []string
}

// New builds a Validator that accepts the given notification channels
func New(channels []string) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		channels: make(map[string]struct{}, len(channels)),
		names:    append([]string(nil), channels...),
	}
	for _, channel := range channels {
		v.channels[channel] = struct{}{}
	}

	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// registration only fails on empty tags or nil funcs
	_ = v.validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		_, ok := v.channels[fl.Field().String()]
		return ok
	})
	v.validate.RegisterStructValidation(validateDndWindow, DndWindowRequest{})

	return v
}

// validateDndWindow enforces that a window is either a full day or has both
// a start and an end time
func validateDndWindow(sl validator.StructLevel) {
	w := sl.Current().Interface().(DndWindowRequest)
	fullDay := w.IsFullDay != nil && *w.IsFullDay

	switch {
	case fullDay && (w.StartTime != nil || w.EndTime != nil):
		sl.ReportError(w.IsFullDay, "isFullDay", "IsFullDay", "fullday_xor_times", "")
	case !fullDay && w.StartTime == nil:
		sl.ReportError(w.StartTime, "startTime", "StartTime", "required_unless_fullday", "")
	case !fullDay && w.EndTime == nil:
		sl.ReportError(w.EndTime, "endTime", "EndTime", "required_unless_fullday", "")
	}
}

// ValidateEvent checks an incoming event
func (v *Validator) ValidateEvent(req *EventRequest) error {
	if req == nil {
		return apperrors.NewValidationError("request body is required")
	}
	if err := v.validate.Struct(req); err != nil {
		return v.translate(err)
	}
	if !req.payloadIsObject() {
		return apperrors.NewValidationError("payload must be an object")
	}
	return nil
}

// ValidatePreferences checks a full replacement
func (v *Validator) ValidatePreferences(req *PreferencesRequest) error {
	if req == nil {
		return apperrors.NewValidationError("request body is required")
	}
	if err := v.validate.Struct(req); err != nil {
		return v.translate(err)
	}
	return nil
}

// ValidateUpdate checks a partial update, which must set at least one field
func (v *Validator) ValidateUpdate(req *PreferencesUpdateRequest) error {
	if req == nil || (req.Preferences == nil && req.DndWindows == nil) {
		return apperrors.NewValidationError("update must contain at least one of preferences or dndWindows")
	}
	if err := v.validate.Struct(req); err != nil {
		return v.translate(err)
	}
	if req.DndWindows != nil {
		for i := range *req.DndWindows {
			if err := v.validate.Struct(&(*req.DndWindows)[i]); err != nil {
				return v.prefix(fmt.Sprintf("dndWindows[%d]", i), err)
			}
		}
	}
	return nil
}

func (v *Validator) prefix(path string, err error) error {
	translated := v.translate(err)
	var appErr *apperrors.AppError
	if errors.As(translated, &appErr) {
		return apperrors.NewValidationError(path + "." + appErr.Message)
	}
	return translated
}

// translate turns the first validator failure into a readable validation error
func (v *Validator) translate(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return apperrors.NewValidationError(err.Error())
	}

	fe := validationErrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "min":
		message = fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "oneof":
		message = fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hhmm":
		message = fmt.Sprintf("%s must be a time of day in HH:MM form", field)
	case "channel":
		message = fmt.Sprintf("%s must be one of [%s]", field, strings.Join(v.names, ", "))
	case "datetime":
		message = fmt.Sprintf("%s must be an ISO 8601 timestamp", field)
	case "fullday_xor_times":
		message = fmt.Sprintf("%s cannot be true when startTime or endTime is set", field)
	case "required_unless_fullday":
		message = fmt.Sprintf("%s is required unless isFullDay is true", field)
	default:
		message = fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
	return apperrors.NewValidationError(message)
}
