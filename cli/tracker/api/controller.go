package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Controller struct {
	router *gin.Engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("HTTP-запрос")
	}
}

func NewController(handler *Handler) *Controller {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", handler.GetHealth)
	router.GET("/status", handler.GetStatus)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Controller{router: router}
}

func (c *Controller) Handler() http.Handler {
	return c.router
}

func (c *Controller) Run(port int32) error {
	return c.router.Run(fmt.Sprintf(":%d", port))
}
