package handlers

import (
	"net/http"
	"time"

	"timeswap/models"
	"timeswap/services/user"
	"timeswap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const tokenTTL = 7 * 24 * time.Hour

type UserHandler struct {
	Users user.UserService
}

func NewUserHandler(users user.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// AuthResponse is returned on signup.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// SignupHandler creates a user with the signup grant and issues a token.
func (h *UserHandler) SignupHandler(c *gin.Context) {
	logger := getLogger(c)

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	u, err := h.Users.Signup(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err, "Signup failed")
		return
	}

	token, err := utils.GenerateToken(u.ID, u.Username, tokenTTL)
	if err != nil {
		logger.Error("Failed to issue token", zap.String("userId", u.ID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to issue token", "")
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{User: u, Token: token})
}

func (h *UserHandler) GetMeHandler(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	u, err := h.Users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, u)
}

// GetUserByIDHandler returns the public profile: username and rating.
func (h *UserHandler) GetUserByIDHandler(c *gin.Context) {
	u, err := h.Users.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username, "rating": u.Rating, "isActive": u.IsActive})
}

func (h *UserHandler) DeactivateMeHandler(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to deactivate user")
		return
	}
	c.Status(http.StatusNoContent)
}
