package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/mailer"
)

type ContactHandler struct {
	svc *mailer.ContactService
	log logrus.FieldLogger
}

func NewContactHandler(svc *mailer.ContactService, log logrus.FieldLogger) *ContactHandler {
	return &ContactHandler{svc: svc, log: log}
}

func (h *ContactHandler) RegisterRoutes(r gin.IRouter, limit gin.HandlerFunc) {
	r.POST("/send-message", limit, h.SendMessage)
}

// SendMessage reads the url-encoded or multipart contact form.
func (h *ContactHandler) SendMessage(c *gin.Context) {
	err := h.svc.Send(c.Request.Context(), mailer.ContactMessage{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent successfully!"})
}
