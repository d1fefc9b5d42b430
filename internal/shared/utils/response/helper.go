package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ewait/internal/shared/apperrors"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes err using its apperrors kind. Unclassified errors are logged
// and reported as a generic 500.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind != apperrors.KindInternal {
		if appErr.Err != nil {
			slog.WarnContext(c.Request.Context(), appErr.Message,
				slog.String("path", c.Request.URL.Path),
				slog.String("error", appErr.Err.Error()),
			)
		}
		RespondJSON(c, "error", appErr.StatusCode(), appErr.Message, nil, appErr.Kind)
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, apperrors.KindInternal)
}
