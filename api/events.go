package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/chaincounter/sse"
)

// events streams notifications, outcomes and session changes. Active
// notifications are not replayed; clients read GET /executor on connect.
func (h *Handler) events(c *gin.Context) {
	sse.ServeSSE(h.hub, c.Writer, c.Request, "events:"+uuid.NewString())
}
