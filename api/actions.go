package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/executor"
	"github.com/kbukum/chaincounter/server"
	"github.com/kbukum/chaincounter/sse"
)

// action runs one counter action. The action outlives a disconnecting
// client, bounded by the action timeout. The outcome is published on the
// event stream whether it succeeded or not; a rejected call (busy or unknown
// kind) publishes nothing.
func (h *Handler) action(c *gin.Context) {
	kind, err := executor.ParseKind(c.Param("kind"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.actionTimeout)
	defer cancel()

	out, err := h.exec.Run(ctx, kind)
	if errors.HasCode(err, errors.ErrCodeActionInProgress) {
		server.RespondWithError(c, err)
		return
	}
	h.publish(sse.EventTypeOutcome, out)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, out)
}

type executorView struct {
	State         executor.State          `json:"state"`
	Notifications []executor.Notification `json:"notifications"`
}

func (h *Handler) executorState(c *gin.Context) {
	server.RespondOK(c, executorView{
		State:         h.exec.State(),
		Notifications: h.exec.Notifier().Active(),
	})
}
