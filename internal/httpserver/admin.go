package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"directsales/internal/domain"
	accountsvc "directsales/internal/service/account"
	ranksvc "directsales/internal/service/rank"
)

type reorderRequest struct {
	Direction string `json:"direction"`
}

func (h *handlers) adminListOrders(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	orders, total, err := h.deps.Orders.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPage(orders, total, limit, offset))
}

func (h *handlers) adminGetOrder(c *gin.Context) {
	order, err := h.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) adminListCustomers(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	profiles, total, err := h.deps.Accounts.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPage(profiles, total, limit, offset))
}

func (h *handlers) adminUpdateCustomer(c *gin.Context) {
	var in accountsvc.AdminUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	profile, err := h.deps.Accounts.AdminUpdate(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handlers) listRanks(c *gin.Context) {
	ranks, err := h.deps.Ranks.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if ranks == nil {
		ranks = []domain.Rank{}
	}
	c.JSON(http.StatusOK, gin.H{"items": ranks})
}

func (h *handlers) getRank(c *gin.Context) {
	r, err := h.deps.Ranks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handlers) createRank(c *gin.Context) {
	var in ranksvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	r, err := h.deps.Ranks.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *handlers) updateRank(c *gin.Context) {
	var in ranksvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	r, err := h.deps.Ranks.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handlers) deleteRank(c *gin.Context) {
	if err := h.deps.Ranks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reorderRank moves a rank one rung up or down the ladder and returns the
// resulting ladder. Moving past either end leaves the ladder unchanged.
func (h *handlers) reorderRank(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	dir, err := ranksvc.ParseDirection(req.Direction)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ladder, err := h.deps.Ranks.Reorder(c.Request.Context(), c.Param("id"), dir)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ladder})
}
