package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentrepo "directsales/internal/repository/payment"
)

// paymentNotify receives the gateway's form-encoded server-to-server
// notification. Preflight and method checks happen before any parsing so
// that rejected requests never reach the store.
func (h *handlers) paymentNotify(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "method_not_allowed"})
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		badRequest(c, "invalid form body")
		return
	}

	if _, err := h.deps.Payments.HandleNotification(c.Request.Context(), c.Request.PostForm); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) getMyPayment(c *gin.Context) {
	tx, err := h.deps.Payments.Get(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *handlers) adminListPayments(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	f := paymentrepo.Filter{
		UserID: c.Query("userId"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	txs, total, err := h.deps.Payments.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPage(txs, total, limit, offset))
}
