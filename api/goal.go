package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/ledger"
	"github.com/kbukum/chaincounter/server"
)

type goalRequest struct {
	// Target accepts a JSON number or a decimal string.
	Target json.Number `json:"target"`
}

func (h *Handler) setGoal(c *gin.Context) {
	var req goalRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		server.RespondWithError(c, errors.InvalidInput("target", "body must be {\"target\": <positive integer>}"))
		return
	}
	g, err := ledger.ParseGoal(req.Target.String())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.exec.SetGoal(g)
	server.RespondOK(c, h.exec.GoalProgress())
}

func (h *Handler) clearGoal(c *gin.Context) {
	h.exec.ClearGoal()
	server.RespondNoContent(c)
}

func (h *Handler) goal(c *gin.Context) {
	server.RespondOK(c, h.exec.GoalProgress())
}
