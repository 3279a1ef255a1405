package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/validator"
)

// BindJSON decodes the request body into dst and converts binding failures into
// a validation error carrying per-field messages.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if fields := validator.FieldErrors(err); fields != nil {
			return apperror.ValidationFields("invalid request", fields)
		}
		return apperror.Validation("invalid request: " + err.Error())
	}
	return nil
}
