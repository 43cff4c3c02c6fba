package tracking

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/data/",
	"/live/",
	"/admin/",
	"/favicon",
	"/healthz",
}

// Middleware records page views in the background. Asset, API and admin
// paths are skipped, as are requests sending DNT: 1.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !Tracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := t.Record(ctx, ip, ua, path); err != nil {
				t.logger.Error("Error recording visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}

// Tracked reports whether visits to path are recorded.
func Tracked(path string) bool {
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// RunCleanup deletes visits older than Retention now and then every
// interval until ctx is done.
func (t *Tracker) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := t.Cleanup(ctx, t.now().Add(-Retention)); err != nil && ctx.Err() == nil {
			t.logger.Error("Error cleaning up old visitor data", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
