package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/roompush/dal"
	"github.com/vnkhanh/roompush/middleware"
	"github.com/vnkhanh/roompush/push"
	"github.com/vnkhanh/roompush/realtime"
	"github.com/vnkhanh/roompush/utils"
)

type NotificationReq struct {
	Message string `json:"message" binding:"required" example:"Lunch is here"`
}

var notificationMessages = utils.Messages{
	"message.required": "Message is required",
}

type fanOutResult struct {
	push.Report
	Live int
}

// fanOut sends payload to every member of roomID except excludeUserID (which
// may be empty), over web push and to open websockets.
func (h *Handler) fanOut(c *gin.Context, roomID, excludeUserID string, payload any) (fanOutResult, error) {
	// a client hanging up must not cut deliveries short
	ctx := context.WithoutCancel(c.Request.Context())

	recipients, err := dal.RoomRecipients(ctx, h.DB, roomID)
	if err != nil {
		return fanOutResult{}, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fanOutResult{}, fmt.Errorf("encode payload: %w", err)
	}

	targets := make([]push.Target, 0, len(recipients))
	userIDs := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.UserID == excludeUserID {
			continue
		}
		userIDs = append(userIDs, r.UserID)
		targets = append(targets, push.Target{UserID: r.UserID, Email: r.Email, Subscription: r.Subscription})
	}

	rep := h.Push.Dispatch(ctx, targets, body)
	if len(rep.Gone) > 0 {
		stale := make([]dal.StaleSubscription, 0, len(rep.Gone))
		for _, t := range rep.Gone {
			stale = append(stale, dal.StaleSubscription{UserID: t.UserID, Subscription: t.Subscription})
		}
		n, err := dal.ClearSubscriptions(ctx, h.DB, stale)
		if err != nil {
			log.Warn().Err(err).Msg("clear expired subscriptions")
		}
		log.Debug().Int64("cleared", n).Int("gone", len(stale)).Msg("expired subscriptions")
	}

	live := 0
	if h.Hub != nil {
		live = h.Hub.Publish(userIDs, realtime.Message{Type: "notification", RoomID: roomID, Payload: payload})
	}

	log.Info().
		Str("room", roomID).
		Int("attempted", rep.Attempted).
		Int("delivered", rep.Delivered).
		Int("failed", rep.Failed).
		Int("expired", rep.Expired).
		Int("skipped", rep.Skipped).
		Int("live", live).
		Msg("notification fan-out")
	return fanOutResult{Report: rep, Live: live}, nil
}

// SendNotification godoc
// @Summary Push a message to every subscribed member of a room
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Param body body NotificationReq true "Message"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/notifications/send/{roomId} [post]
func (h *Handler) SendNotification(c *gin.Context) {
	var req NotificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err, notificationMessages)})
		return
	}

	roomID := c.Param("roomId")
	payload := gin.H{"title": "Notification", "body": req.Message}
	res, err := h.fanOut(c, roomID, "", payload)
	if errors.Is(err, dal.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("send notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications sent successfully", "report": res.Report, "live": res.Live})
}

// Stream godoc
// @Summary Websocket feed of notifications for the caller's rooms
// @Tags notifications
// @Param access_token query string false "Bearer token when headers cannot be set"
// @Success 101
// @Failure 401 {object} map[string]string
// @Router /api/notifications/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	h.Hub.Serve(c.Writer, c.Request, middleware.UserID(c))
}
