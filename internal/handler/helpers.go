package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/apierror"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain errors to HTTP responses. Validation problems are
// 400, lifecycle conflicts 409, policy rejections 428 with the discrepancy
// payload, and anything unexpected becomes an opaque 500 logged by the
// error-handler middleware.
func respondError(c *gin.Context, err error) {
	var policyErr *cashdesk.PolicyError
	switch {
	case errors.As(err, &policyErr):
		c.JSON(http.StatusPreconditionRequired, &apierror.PolicyViolation{
			Detail:                policyErr.Err.Error(),
			Tier:                  string(policyErr.Tier),
			Discrepancy:           policyErr.Discrepancy.StringFixed(2),
			RequiresJustification: true,
			RequiresAuthorization: errors.Is(err, cashdesk.ErrAuthorizationRequired),
		})
	case errors.Is(err, cashdesk.ErrInvalidAmount), errors.Is(err, cashdesk.ErrInvalidMovement):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, cashdesk.ErrAlreadyOpen),
		errors.Is(err, cashdesk.ErrNoOpenSession),
		errors.Is(err, cashdesk.ErrSessionClosed):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("not found"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
