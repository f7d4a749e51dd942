package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is any dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthModule serves /healthz. It answers 503 when a probe fails.
type HealthModule struct {
	Probes map[string]Pinger
}

func NewHealthModule(probes map[string]Pinger) *HealthModule {
	return &HealthModule{Probes: probes}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := gin.H{}, http.StatusOK
		for name, p := range m.Probes {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				status[name] = "down"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "up"
		}
		c.JSON(code, gin.H{"status": http.StatusText(code), "checks": status})
	})
}
