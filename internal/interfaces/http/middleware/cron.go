package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/infrastructure/config"
	"github.com/sitefund/backend/internal/interfaces/http/dto"
)

// cronHeader is set by the App Engine cron service on requests it
// originates. The platform strips the header from external traffic, so its
// presence proves the call came from the scheduler and not a client.
const cronHeader = "X-Appengine-Cron"

// TrustedCron returns a middleware that only admits requests from the
// platform cron scheduler. With AllowLocal enabled, loopback requests are
// also admitted so the generation run can be triggered in development.
func TrustedCron(cfg config.CronConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.GetHeader(cronHeader) != "" {
			c.Next()
			return
		}

		if cfg.AllowLocal && isLoopback(c.Request.RemoteAddr) {
			logger.Debug("cron endpoint called from loopback",
				zap.String("remote_addr", c.Request.RemoteAddr))
			c.Next()
			return
		}

		logger.Warn("rejected untrusted call to cron endpoint",
			zap.String("path", c.Request.URL.Path),
			zap.String("remote_addr", c.Request.RemoteAddr))
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Cron endpoints accept scheduler requests only"))
	}
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
