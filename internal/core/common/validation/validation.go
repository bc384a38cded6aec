package validation

import (
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/expense-policy/internal"
)

type ValidatorFunc func(value interface{}) *errors.ValidationError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
	code       errors.ErrorCode
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.ValidationError {
	return &errors.ValidationError{Field: fv.FieldName, Message: message, Code: string(code)}
}

// WithCode reports every failure of the field under code.
func (fv *FieldValidator) WithCode(code errors.ErrorCode) *FieldValidator {
	fv.code = code
	return fv
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		missing := false
		switch v := value.(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		case time.Time:
			missing = v.IsZero()
		case nil:
			missing = true
		}
		if missing {
			return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(string); ok && utf8.RuneCountInString(v) < min {
			return fv.fail(fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(string); ok && utf8.RuneCountInString(v) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Positive(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(decimal.Decimal); ok && !v.IsPositive() {
			return fv.fail(fmt.Sprintf("%s must be positive", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxDecimal(max decimal.Decimal, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(decimal.Decimal); ok && compareDecimal(v, max) > 0 {
			return fv.fail(fmt.Sprintf("%s must not exceed %s", fv.FieldName, max.StringFixed(2)), code)
		}
		return nil
	})
	return fv
}

// MaxPlaces rejects amounts finer than the currency's minor unit.
func (fv *FieldValidator) MaxPlaces(places int32, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := value.(decimal.Decimal); ok && !withinPlaces(v, places) {
			return fv.fail(fmt.Sprintf("%s must have at most %d decimal places", fv.FieldName, places), code)
		}
		return nil
	})
	return fv
}

// withinPlaces reports whether v has no non-zero digit beyond places. Work is
// bounded by the coefficient's length, not by the exponent, so inputs such as
// 1e-100000000 are rejected without rescaling.
func withinPlaces(v decimal.Decimal, places int32) bool {
	exp := int64(v.Exponent())
	if exp >= -int64(places) {
		return true
	}
	coef := new(big.Int).Abs(v.Coefficient())
	if coef.Sign() == 0 {
		return true
	}
	excess := -int64(places) - exp
	if excess > int64(len(coef.Text(10))) {
		return false
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(excess), nil)
	return new(big.Int).Rem(coef, unit).Sign() == 0
}

// compareDecimal is a.Cmp(b) that settles differing orders of magnitude
// before rescaling, since decimal.Cmp rescales to the smaller exponent.
func compareDecimal(a, b decimal.Decimal) int {
	sa, sb := a.Sign(), b.Sign()
	if sa != sb {
		if sa < sb {
			return -1
		}
		return 1
	}
	if sa == 0 {
		return 0
	}

	ma, mb := magnitude(a), magnitude(b)
	if ma != mb {
		r := 1
		if ma < mb {
			r = -1
		}
		return r * sa
	}
	return a.Cmp(b)
}

// magnitude is the position of the leading digit: digits + exponent.
func magnitude(d decimal.Decimal) int64 {
	coef := new(big.Int).Abs(d.Coefficient())
	return int64(len(coef.Text(10))) + int64(d.Exponent())
}

func (fv *FieldValidator) OneOf(code errors.ErrorCode, allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		v, ok := value.(string)
		if !ok {
			return nil
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fv.fail(fmt.Sprintf("%s must be one of %s", fv.FieldName, strings.Join(allowed, ", ")), code)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator ValidatorFunc) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field and reports the first failure per field.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var failures []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if verr := validator(field.Value); verr != nil {
				if field.code != "" {
					verr.Code = string(field.code)
				}
				failures = append(failures, *verr)
				break
			}
		}
	}

	if len(failures) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: failures})
	}
	return nil
}

// Amount applies the money rules: positive, whole cents, at most ceiling.
func (fv *FieldValidator) Amount(ceiling decimal.Decimal) *FieldValidator {
	return fv.
		Positive(errors.ErrCodeInvalidAmount).
		MaxPlaces(2, errors.ErrCodeInvalidAmount).
		MaxDecimal(ceiling, errors.ErrCodeAmountTooHigh)
}

// Description requires non-blank text of at most max characters.
func (fv *FieldValidator) Description(max int) *FieldValidator {
	return fv.
		WithCode(errors.ErrCodeInvalidDescription).
		Required().
		MaxLength(max)
}

func ValidateName(field, name string, max int) *errors.AppError {
	validator := NewValidator()
	validator.Field(field, name).
		Required().
		MaxLength(max)
	return validator.Validate()
}
