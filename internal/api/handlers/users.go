package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toxzak-svg/Axievale/internal/services"
)

type UserHandler struct {
	users *services.UserStore
}

func NewUserHandler(users *services.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Email string `json:"email"`
}

// Create registers a new trial account. The response is the only place the
// API key is ever returned.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	user, err := h.users.Create(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

// Activate marks an account as paid. The payment collaborator calls this once
// a checkout completes.
func (h *UserHandler) Activate(c *gin.Context) {
	user, err := h.users.Activate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}

	user.APIKey = ""
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}
