package dynaschema

import (
	"embed"

	"github.com/kaptinlin/go-i18n"
)

//go:embed locales/*.json
var localesFS embed.FS

// I18n returns an initialized internationalization bundle with the
// embedded locale files, for translating validation error messages.
func I18n() (*i18n.I18n, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en", "zh-Hans"),
	)
	err := bundle.LoadFS(localesFS, "locales/*.json")
	return bundle, err
}

// Localizable is implemented by validation errors that carry a stable
// message code and substitution parameters, so callers can render them in
// a locale other than the engine's default English Error() text.
type Localizable interface {
	error
	Code() string
	Params() map[string]any
}

// Localize renders err's message in the localizer's locale if err
// implements Localizable, falling back to err.Error() otherwise.
func Localize(localizer *i18n.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if l, ok := err.(Localizable); ok && localizer != nil {
		return localizer.Get(l.Code(), i18n.Vars(l.Params()))
	}
	return err.Error()
}

func (e *MissingRequiredError) Code() string { return "missing_required" }
func (e *MissingRequiredError) Params() map[string]any {
	return map[string]any{"field": e.Field}
}

func (e *RangeViolationError) Code() string { return "range_violation" }
func (e *RangeViolationError) Params() map[string]any {
	return map[string]any{"field": e.Field, "value": e.Value, "min": e.Min, "max": e.Max}
}

func (e *EnumViolationError) Code() string { return "enum_violation" }
func (e *EnumViolationError) Params() map[string]any {
	return map[string]any{"field": e.Field, "value": e.Value}
}

func (e *DanglingReferenceError) Code() string { return "dangling_reference" }
func (e *DanglingReferenceError) Params() map[string]any {
	return map[string]any{"field": e.Field, "target": e.Target, "got": e.Got}
}

func (e *BadValueFormatError) Code() string { return "bad_value_format" }
func (e *BadValueFormatError) Params() map[string]any {
	return map[string]any{"field": e.Field, "got": e.Got}
}

func (e *UnknownFieldError) Code() string { return "unknown_field" }
func (e *UnknownFieldError) Params() map[string]any {
	return map[string]any{"field": e.Field}
}
