package academic

import (
	"github.com/go-playground/validator/v10"

	"github.com/edusuite/honoris/core"
)

var (
	schoolYearTag  = "schoolyear"
	schoolYearText = "must be a school year in YYYY-YYYY format, e.g. 2024-2025"
)

func init() {
	_ = core.Validate.RegisterValidation(schoolYearTag, schoolYearValidation)
	core.RegisterCustomTranslation(schoolYearTag, schoolYearText)
}

func schoolYearValidation(fl validator.FieldLevel) bool {
	return schoolYearValid(fl.Field().String())
}
