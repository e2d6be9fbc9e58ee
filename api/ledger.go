package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/server"
)

func (h *Handler) entries(c *gin.Context) {
	server.RespondOK(c, h.exec.Ledger().Entries())
}

func (h *Handler) stats(c *gin.Context) {
	server.RespondOK(c, h.exec.Ledger().Stats(h.now()))
}

func (h *Handler) export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exec.Ledger().Export(&buf); err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}
	name := fmt.Sprintf("counter-history-%s.json", h.now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

func (h *Handler) importLedger(c *gin.Context) {
	n, err := h.exec.Ledger().Import(c.Request.Body)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.WithContext(c.Request.Context()).Info("ledger imported", logger.Fields("entries", n))
	server.RespondOK(c, gin.H{"imported": n})
}
