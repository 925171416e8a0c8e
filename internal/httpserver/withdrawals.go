package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"directsales/internal/domain"
	withdrawalrepo "directsales/internal/repository/withdrawal"
	withdrawalsvc "directsales/internal/service/withdrawal"
)

type decisionRequest struct {
	Note string `json:"note"`
}

func (h *handlers) listMyWithdrawals(c *gin.Context) {
	ws, err := h.deps.Withdrawals.ListMine(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if ws == nil {
		ws = []domain.Withdrawal{}
	}
	c.JSON(http.StatusOK, gin.H{"items": ws})
}

func (h *handlers) requestWithdrawal(c *gin.Context) {
	var in withdrawalsvc.RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	w, err := h.deps.Withdrawals.Request(c.Request.Context(), identity(c).UserID, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *handlers) adminListWithdrawals(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	f := withdrawalrepo.Filter{
		UserID: c.Query("userId"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	ws, total, err := h.deps.Withdrawals.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPage(ws, total, limit, offset))
}

func (h *handlers) approveWithdrawal(c *gin.Context) {
	h.decideWithdrawal(c, h.deps.Withdrawals.Approve)
}

func (h *handlers) rejectWithdrawal(c *gin.Context) {
	h.decideWithdrawal(c, h.deps.Withdrawals.Reject)
}

func (h *handlers) decideWithdrawal(c *gin.Context, decide func(ctx context.Context, id, note string) (*domain.Withdrawal, error)) {
	var req decisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid JSON body")
			return
		}
	}
	w, err := decide(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
