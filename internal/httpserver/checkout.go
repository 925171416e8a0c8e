package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) checkout(c *gin.Context) {
	res, err := h.deps.Checkout.Checkout(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) listMyOrders(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	orders, total, err := h.deps.Orders.ListMine(c.Request.Context(), identity(c).UserID, limit, offset)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPage(orders, total, limit, offset))
}

func (h *handlers) getMyOrder(c *gin.Context) {
	order, err := h.deps.Orders.GetMine(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
