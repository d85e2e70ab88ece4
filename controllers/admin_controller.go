package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/models"
	"storefront/services"
)

type AdminController struct {
	accounts *services.AccountService
}

func NewAdminController(accounts *services.AccountService) *AdminController {
	return &AdminController{accounts: accounts}
}

// Login handles POST /api/admin/login.
func (h *AdminController) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, admin, err := h.accounts.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": admin.ID, "username": admin.Username, "email": admin.Email},
	})
}
