package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/roompush/dal"
	"github.com/vnkhanh/roompush/middleware"
	"github.com/vnkhanh/roompush/utils"
)

type CreateRoomReq struct {
	Name       string `json:"name" binding:"required,max=100" example:"General"`
	MaxMembers int    `json:"maxMembers" binding:"required,min=1" example:"10"`
}

type RoomNotificationReq struct {
	Title   string `json:"title" example:"Standup"`
	Message string `json:"message" example:"Starting in 5 minutes"`
}

// CreateRoom godoc
// @Summary Create a room with the caller as its first member
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRoomReq true "Room"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/rooms/create [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err, nil)})
		return
	}

	room, err := dal.CreateRoom(c.Request.Context(), h.DB, req.Name, req.MaxMembers, middleware.UserID(c))
	if err != nil {
		log.Error().Err(err).Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Room created successfully", "room": room})
}

// JoinRoom godoc
// @Summary Join a room
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "already a member or room full"
// @Failure 404 {object} map[string]string
// @Router /api/rooms/join/{roomId} [post]
func (h *Handler) JoinRoom(c *gin.Context) {
	err := dal.JoinRoom(c.Request.Context(), h.DB, c.Param("roomId"), middleware.UserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "User added to the room"})
	case errors.Is(err, dal.ErrRoomNotFound), errors.Is(err, dal.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Room or User not found"})
	case errors.Is(err, dal.ErrAlreadyMember):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is already in the room"})
	case errors.Is(err, dal.ErrRoomFull):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room is full"})
	default:
		log.Error().Err(err).Msg("join room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
	}
}

// ListRooms godoc
// @Summary List every room with its members
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size, unbounded when omitted"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} models.Room
// @Router /api/rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	rooms, err := dal.ListRooms(c.Request.Context(), h.DB, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// ListUserRooms godoc
// @Summary List the rooms a user belongs to
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {array} models.Room
// @Failure 404 {object} map[string]string
// @Router /api/rooms/user/{userId} [get]
func (h *Handler) ListUserRooms(c *gin.Context) {
	rooms, err := dal.ListRoomsByUser(c.Request.Context(), h.DB, c.Param("userId"))
	if err != nil {
		log.Error().Err(err).Msg("list user rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}
	if len(rooms) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No rooms found for this user"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// SendRoomNotification godoc
// @Summary Notify every other member of a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param body body RoomNotificationReq true "Notification"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/rooms/send-notification/{roomId} [post]
func (h *Handler) SendRoomNotification(c *gin.Context) {
	var req RoomNotificationReq
	// a body-less POST sends an empty notification
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	roomID := c.Param("roomId")
	payload := gin.H{"title": req.Title, "message": req.Message}
	// the sender does not notify themselves
	res, err := h.fanOut(c, roomID, middleware.UserID(c), payload)
	if errors.Is(err, dal.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("send room notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications sent", "report": res.Report, "live": res.Live})
}
