package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/utils"
	"golang.org/x/time/rate"
)

// PaymentRateLimiter throttles the cashier endpoints as a whole, on top of the
// per-IP limiter.
func PaymentRateLimiter(perSecond float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "please wait before making another payment request",
			})
			return
		}
		c.Next()
	}
}

// LogPaymentRequest writes an audit line for every payment attempt.
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"order_id": c.Param("order_id"),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if subject, ok := c.Get(ContextSubject); ok {
			fields["subject"] = subject
		}
		if c.Writer.Status() < 300 {
			utils.InfoLogger.WithFields(fields).Info("payment request")
		} else {
			utils.ErrorLogger.WithFields(fields).Error("payment request failed")
		}
	}
}
