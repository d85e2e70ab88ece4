package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/middlewares"
	"storefront/models"
	"storefront/services"
)

type CustomerController struct {
	accounts *services.AccountService
}

func NewCustomerController(accounts *services.AccountService) *CustomerController {
	return &CustomerController{accounts: accounts}
}

type customerResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

func toCustomerResponse(c *models.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

// Register handles POST /api/customers/register.
func (h *CustomerController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, customer, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Customer registered successfully",
		"token":    token,
		"customer": toCustomerResponse(customer),
	})
}

// Login handles POST /api/customers/login.
func (h *CustomerController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, customer, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"token":    token,
		"customer": toCustomerResponse(customer),
	})
}

// Profile handles GET /api/customers/profile.
func (h *CustomerController) Profile(c *gin.Context) {
	customer, err := h.accounts.Profile(c.Request.Context(), middlewares.CustomerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateProfile handles PUT /api/customers/profile.
func (h *CustomerController) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.accounts.UpdateProfile(c.Request.Context(), middlewares.CustomerID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
