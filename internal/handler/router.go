package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"travel-review-service/internal/auth"
	"travel-review-service/internal/itinerary"
	"travel-review-service/internal/mailer"
	"travel-review-service/internal/metrics"
	"travel-review-service/internal/middleware"
	"travel-review-service/internal/service"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	ServiceName        string
	Log                logrus.FieldLogger
	Metrics            *metrics.Metrics
	Identity           auth.IdentityResolver
	RateLimiter        *middleware.RateLimiter
	AllowedOrigins     []string
	TrustedProxies     []string
	MaxMultipartMemory int64
	MaxUploadBytes     int64

	Reviews   *service.ReviewService
	Accounts  *service.AuthService
	Photos    *service.PhotoService
	Itinerary *itinerary.Service
	Contact   *mailer.ContactService
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	// With no trusted proxies ClientIP is the socket peer, so forwarded
	// headers cannot dodge the rate limiter.
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Log.WithError(err).Warn("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	if d.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = d.MaxMultipartMemory
	}

	r.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			middleware.Logger(c, d.Log).WithField("panic", recovered).Error("handler panicked")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}),
		middleware.RequestLogger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.AllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": d.ServiceName})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	authRequired := middleware.AuthRequired(d.Identity)
	limit := d.RateLimiter.Handler()

	NewAuthHandler(d.Accounts, d.Log).RegisterRoutes(r, authRequired)
	NewReviewHandler(d.Reviews, d.Log).RegisterRoutes(r, authRequired)
	NewPhotoHandler(d.Photos, d.MaxUploadBytes, d.Log).RegisterRoutes(r)
	NewItineraryHandler(d.Itinerary, d.Log).RegisterRoutes(r, limit)
	NewContactHandler(d.Contact, d.Log).RegisterRoutes(r, limit)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}
