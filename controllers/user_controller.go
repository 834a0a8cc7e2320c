package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/roompush/dal"
	"github.com/vnkhanh/roompush/middleware"
	"github.com/vnkhanh/roompush/models"
	"github.com/vnkhanh/roompush/utils"
)

type RegisterReq struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"secret1"`
}

var registerMessages = utils.Messages{
	"username.required": "Username is required",
	"email.required":    "Please include a valid email",
	"email.email":       "Please include a valid email",
	"password.required": "Password must be at least 6 characters",
	"password.min":      "Password must be at least 6 characters",
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

var loginMessages = utils.Messages{
	"email.required":    "Please include a valid email",
	"email.email":       "Please include a valid email",
	"password.required": "Password is required",
}

type SubscribeReq struct {
	Subscription json.RawMessage `json:"subscription" swaggertype:"object"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param body body RegisterReq true "Account"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]interface{}
// @Router /api/users/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err, registerMessages)})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []utils.FieldError{
			{Field: "password", Message: "Password must be at most 72 bytes"},
		}})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	u := models.User{Username: req.Username, Email: req.Email, Password: hash}
	if err := dal.CreateUser(c.Request.Context(), h.DB, &u); err != nil {
		if errors.Is(err, dal.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		log.Error().Err(err).Msg("register user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login godoc
// @Summary Exchange credentials for a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param body body LoginReq true "Credentials"
// @Success 200 {object} map[string]interface{} "token and user"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err, loginMessages)})
		return
	}

	u, err := dal.GetUserByEmail(c.Request.Context(), h.DB, req.Email)
	if errors.Is(err, dal.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if !utils.CheckPassword(u.Password, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Tokens.GenerateToken(u.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// ValidateToken godoc
// @Summary Return the user the bearer token belongs to
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/users/validate-token [get]
func (h *Handler) ValidateToken(c *gin.Context) {
	u, err := dal.GetUserByID(c.Request.Context(), h.DB, middleware.UserID(c))
	if errors.Is(err, dal.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("validate token lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Subscribe godoc
// @Summary Store the caller's push subscription
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubscribeReq true "Push subscription issued by the browser"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sub, err := models.ParseSubscription(req.Subscription)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription must be a JSON object"})
		return
	}

	if err := dal.SetSubscription(c.Request.Context(), h.DB, middleware.UserID(c), sub); err != nil {
		if errors.Is(err, dal.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Error().Err(err).Msg("save subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscription saved successfully"})
}

// Unsubscribe godoc
// @Summary Remove the caller's push subscription
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/subscribe [delete]
func (h *Handler) Unsubscribe(c *gin.Context) {
	if err := dal.SetSubscription(c.Request.Context(), h.DB, middleware.UserID(c), nil); err != nil {
		if errors.Is(err, dal.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Error().Err(err).Msg("remove subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription removed"})
}

// PublicKey godoc
// @Summary Public key browsers need to create a push subscription
// @Tags users
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/users/vapid-public-key [get]
func (h *Handler) PublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.VAPIDPublicKey})
}
