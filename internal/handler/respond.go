// Package handler binds HTTP requests to the services and renders JSON.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/middleware"
)

// respondError writes {"error": msg} with the status for err's kind.
// Server-side failures are logged with the request-scoped logger.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		middleware.Logger(c, log).WithError(err).WithField("kind", apperror.KindOf(err)).Error("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": apperror.PublicMessage(err)})
}
