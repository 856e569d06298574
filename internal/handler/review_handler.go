package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/middleware"
	"travel-review-service/internal/model"
	"travel-review-service/internal/service"
)

// AddReviewRequest is the JSON payload for submitting a review.
type AddReviewRequest struct {
	Name      string     `json:"Name"`
	Location  string     `json:"location"`
	Purpose   string     `json:"purpose"`
	Budget    flexString `json:"budget"`
	Transport string     `json:"transport"`
	Review    string     `json:"review"`
	PhotoURLs []string   `json:"photo_urls"`
}

type AddCommentRequest struct {
	ReviewID string `json:"reviewId"`
	Comment  string `json:"comment"`
}

type UpdateRatingRequest struct {
	ReviewID string          `json:"reviewId"`
	Rating   json.RawMessage `json:"rating"`
}

// ReviewHandler ties HTTP requests to the ReviewService.
type ReviewHandler struct {
	reviewSvc *service.ReviewService
	log       logrus.FieldLogger
}

func NewReviewHandler(rs *service.ReviewService, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{reviewSvc: rs, log: log}
}

// RegisterRoutes registers:
//
//	POST /add_review
//	GET  /get_reviews
//	POST /add_comment    (auth)
//	POST /update_rating
func (h *ReviewHandler) RegisterRoutes(r gin.IRouter, authRequired gin.HandlerFunc) {
	r.POST("/add_review", h.AddReview)
	r.GET("/get_reviews", h.GetReviews)
	r.POST("/add_comment", authRequired, h.AddComment)
	r.POST("/update_rating", h.UpdateRating)
}

func (h *ReviewHandler) AddReview(c *gin.Context) {
	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperror.InvalidInput("Invalid JSON body"))
		return
	}

	id, err := h.reviewSvc.Create(c.Request.Context(), model.NewReview{
		Name:      req.Name,
		Location:  req.Location,
		Purpose:   req.Purpose,
		Budget:    string(req.Budget),
		Transport: req.Transport,
		Text:      req.Review,
		Images:    req.PhotoURLs,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added successfully!", "id": id})
}

// GetReviews handles GET /get_reviews?location=&purpose=&budget=&transport=&sort=
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	filter := model.ReviewFilter{
		Location:  c.Query("location"),
		Purpose:   c.Query("purpose"),
		Budget:    c.Query("budget"),
		Transport: c.Query("transport"),
		Sort:      model.ParseSortMode(c.Query("sort")),
	}

	reviews, err := h.reviewSvc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) AddComment(c *gin.Context) {
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperror.InvalidInput("Review ID and comment are required."))
		return
	}

	email, _ := middleware.Identity(c)
	if err := h.reviewSvc.AddComment(c.Request.Context(), req.ReviewID, email, req.Comment); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment added successfully!"})
}

func (h *ReviewHandler) UpdateRating(c *gin.Context) {
	var req UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperror.InvalidInput("Review ID and rating are required."))
		return
	}

	var rating float64
	if len(req.Rating) == 0 || json.Unmarshal(req.Rating, &rating) != nil {
		respondError(c, h.log, apperror.InvalidInput("Review ID and rating are required."))
		return
	}

	stats, err := h.reviewSvc.Rate(c.Request.Context(), req.ReviewID, rating)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Rating updated successfully!",
		"rating":       stats.Rating,
		"rating_count": stats.RatingCount,
	})
}
