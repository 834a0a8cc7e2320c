package controllers

import (
	"gorm.io/gorm"

	"github.com/vnkhanh/roompush/push"
	"github.com/vnkhanh/roompush/realtime"
	"github.com/vnkhanh/roompush/utils"
)

// Handler carries the dependencies shared by every route. It is built once
// at startup; handlers never reach for package level state.
type Handler struct {
	DB             *gorm.DB
	Tokens         *utils.TokenIssuer
	Push           *push.Dispatcher
	Hub            *realtime.Hub
	VAPIDPublicKey string
}
