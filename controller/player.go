package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-cultivation/dto"
	"go-cultivation/entities"
	"go-cultivation/middleware"
	"go-cultivation/utils"
)

func (ctl *Controller) CreatePlayer(c *gin.Context) {
	var req dto.CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	p, err := ctl.accounts.Create(c.Request.Context(), req.Username, req.Password, req.Name)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.issue(c, p, "player created")
}

func (ctl *Controller) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	p, err := ctl.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ctl.issue(c, p, "login successful")
}

func (ctl *Controller) issue(c *gin.Context, p *entities.Player, msg string) {
	token, err := ctl.tokens.Issue(p.PlayerID, p.Username)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ok(c, msg, dto.LoginResponse{PlayerID: p.PlayerID, Name: p.Name, Token: token})
}

// GetMe reads the stored document, which may trail a live session.
func (ctl *Controller) GetMe(c *gin.Context) {
	p, err := ctl.accounts.Players().Get(c.Request.Context(), c.GetString(middleware.PlayerIDKey))
	if err != nil {
		ctl.fail(c, err)
		return
	}
	ok(c, "success", dto.PlayerSummary{
		PlayerID: p.PlayerID,
		Username: p.Username,
		Name:     p.Name,
		Class:    p.ChosenClassName,
		Realm:    p.RealmName(),
		Level:    p.CultivationLevel,
		Sect:     ctl.sects.NameOf(p),
	})
}

// GetRecentChat returns the chat history oldest first, optionally only the
// newest ?limit= messages.
func (ctl *Controller) GetRecentChat(c *gin.Context) {
	msgs, err := ctl.chat.Recent(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive whole number"})
			return
		}
		msgs = utils.LastN(msgs, n)
	}
	if msgs == nil {
		msgs = []entities.ChatMessage{}
	}
	ok(c, "success", gin.H{"messages": msgs})
}
