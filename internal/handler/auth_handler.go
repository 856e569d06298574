package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/middleware"
	"travel-review-service/internal/service"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type AuthHandler struct {
	authSvc *service.AuthService
	log     logrus.FieldLogger
}

func NewAuthHandler(as *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authSvc: as, log: log}
}

func (h *AuthHandler) RegisterRoutes(r gin.IRouter, authRequired gin.HandlerFunc) {
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.GET("/protected", authRequired, h.Protected)
	r.GET("/profile", authRequired, h.Profile)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperror.InvalidInput("Missing required fields"))
		return
	}

	sess, err := h.authSvc.Signup(c.Request.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Signup successful!", "token": sess.Token, "name": sess.Name})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperror.InvalidInput("Missing email or password"))
		return
	}

	sess, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "token": sess.Token, "name": sess.Name})
}

func (h *AuthHandler) Protected(c *gin.Context) {
	email, _ := middleware.Identity(c)
	c.JSON(http.StatusOK, gin.H{"message": "Hello, " + email})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	email, _ := middleware.Identity(c)

	user, err := h.authSvc.Profile(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{
		Name:    user.Name,
		Email:   user.Email,
		Address: user.Address,
		Phone:   user.Phone,
	})
}
