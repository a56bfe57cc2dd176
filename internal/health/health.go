// Package health exposes the liveness and readiness endpoints. Liveness is
// unconditional; readiness is a flag flipped by main around startup and
// shutdown so load balancers drain before the listener closes.
package health

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

type Manager struct {
	mu     sync.RWMutex
	ready  bool
	reason string
}

func NewManager(initialReady bool) *Manager {
	return &Manager{ready: initialReady}
}

func (m *Manager) SetReady(ready bool) {
	m.SetReadyReason(ready, "")
}

// SetReadyReason records why the service is not ready; the reason shows up
// in the readiness response body.
func (m *Manager) SetReadyReason(ready bool, reason string) {
	m.mu.Lock()
	m.ready = ready
	m.reason = reason
	m.mu.Unlock()
}

func (m *Manager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

func LivenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func ReadinessHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.mu.RLock()
		ready, reason := m.ready, m.reason
		m.mu.RUnlock()

		if ready {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		body := gin.H{"status": "not_ready"}
		if reason != "" {
			body["reason"] = reason
		}
		c.JSON(http.StatusServiceUnavailable, body)
	}
}
