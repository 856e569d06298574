package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/itinerary"
)

type ItineraryRequest struct {
	Destination string     `json:"destination"`
	Budget      flexString `json:"budget"`
	Transport   string     `json:"transport"`
	Dates       string     `json:"dates"`
	Purpose     string     `json:"purpose"`
}

type ItineraryHandler struct {
	svc *itinerary.Service
	log logrus.FieldLogger
}

func NewItineraryHandler(svc *itinerary.Service, log logrus.FieldLogger) *ItineraryHandler {
	return &ItineraryHandler{svc: svc, log: log}
}

func (h *ItineraryHandler) RegisterRoutes(r gin.IRouter, limit gin.HandlerFunc) {
	r.POST("/generate_itinerary", limit, h.Generate)
}

func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperror.InvalidInput("Destination, budget, and transport are required."))
		return
	}

	text, err := h.svc.Generate(c.Request.Context(), itinerary.Request{
		Destination: req.Destination,
		Budget:      string(req.Budget),
		Transport:   req.Transport,
		Dates:       req.Dates,
		Purpose:     req.Purpose,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itinerary": text})
}
