package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/server"
	"github.com/kbukum/chaincounter/sse"
)

type sessionEvent struct {
	Connected bool   `json:"connected"`
	SessionID string `json:"session_id,omitempty"`
	Account   string `json:"account,omitempty"`
}

func (h *Handler) connect(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.sessions.Connect(ctx)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.exec.Seed(ctx); err != nil {
		h.log.WithContext(ctx).Warn("ledger not seeded", logger.ErrorFields("seed-ledger", err))
	}
	h.publish(sse.EventTypeSession, sessionEvent{Connected: true, SessionID: sess.ID, Account: sess.Account.String()})
	server.RespondCreated(c, sess)
}

func (h *Handler) disconnect(c *gin.Context) {
	h.sessions.Disconnect()
	h.publish(sse.EventTypeSession, sessionEvent{Connected: false})
	server.RespondNoContent(c)
}

func (h *Handler) currentSession(c *gin.Context) {
	sess := h.sessions.Current()
	if sess == nil {
		server.RespondWithError(c, errors.NotConnected())
		return
	}
	server.RespondOK(c, sess)
}

func (h *Handler) counter(c *gin.Context) {
	v, err := h.sessions.ReadCounter(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"value": v})
}

func (h *Handler) owner(c *gin.Context) {
	owner, err := h.sessions.ReadOwner(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"owner": owner})
}

func (h *Handler) signer(c *gin.Context) {
	signer, err := h.sessions.ReadSignerAddress(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"signer": signer})
}

func (h *Handler) network(c *gin.Context) {
	info, err := h.sessions.ReadNetworkInfo(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, info)
}

func (h *Handler) gasPrice(c *gin.Context) {
	gwei, err := h.sessions.ReadGasPrice(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"gas_price_gwei": gwei})
}

// status returns the passively refreshed view; ?refresh=true refreshes it
// first.
func (h *Handler) status(c *gin.Context) {
	if h.sessions.Current() == nil {
		server.RespondWithError(c, errors.NotConnected())
		return
	}
	if c.Query("refresh") == "true" {
		server.RespondOK(c, h.sessions.Refresh(c.Request.Context()))
		return
	}
	server.RespondOK(c, h.sessions.Status())
}
