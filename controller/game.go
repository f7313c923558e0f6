package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-cultivation/dto"
	"go-cultivation/service"
	"go-cultivation/utils"
	"go-cultivation/ws"
)

// Controller serves the HTTP API next to the websocket sessions.
type Controller struct {
	accounts *service.Accounts
	market   *service.Market
	sects    *service.SectRegistry
	chat     *service.Chat
	hub      *ws.Hub
	tokens   *utils.Tokens
	log      *zap.Logger
}

func New(accounts *service.Accounts, market *service.Market, sects *service.SectRegistry, chat *service.Chat, hub *ws.Hub, tokens *utils.Tokens, log *zap.Logger) *Controller {
	return &Controller{
		accounts: accounts,
		market:   market,
		sects:    sects,
		chat:     chat,
		hub:      hub,
		tokens:   tokens,
		log:      log,
	}
}

func ok(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"status_code": http.StatusOK,
		"msg":         msg,
		"data":        data,
	})
}

// fail maps the error taxonomy onto HTTP status codes.
func (ctl *Controller) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch service.Classify(err) {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		ctl.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (ctl *Controller) GetOnline(c *gin.Context) {
	ok(c, "success", dto.OnlineResponse{Online: ctl.hub.Online()})
}
