package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accountsvc "directsales/internal/service/account"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
	Profile     any    `json:"profile"`
}

func (h *handlers) signup(c *gin.Context) {
	var in accountsvc.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	profile, err := h.deps.Accounts.Signup(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	profile, token, err := h.deps.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.deps.Accounts.AccessTTLSeconds(),
		Profile:     profile,
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.Accounts.Logout(c.Request.Context(), bearerToken(c.GetHeader("Authorization"))); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	profile, err := h.deps.Accounts.Me(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handlers) dashboard(c *gin.Context) {
	d, err := h.deps.Dashboard.Dashboard(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) referrals(c *gin.Context) {
	r, err := h.deps.Dashboard.Referrals(c.Request.Context(), identity(c).UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
