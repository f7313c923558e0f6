package router

import (
	"github.com/gin-gonic/gin"

	"go-cultivation/controller"
	"go-cultivation/middleware"
	"go-cultivation/utils"
	"go-cultivation/ws"
)

func InitRouter(r *gin.Engine, ctl *controller.Controller, hub *ws.Hub, tokens *utils.Tokens) {
	player := r.Group("/player")
	{
		player.POST("/create", ctl.CreatePlayer)
		player.POST("/login", ctl.Login)
		player.GET("/me", middleware.AuthMiddleware(tokens), ctl.GetMe)
	}

	market := r.Group("/market")
	{
		market.GET("/listings", ctl.GetListings)
	}

	sect := r.Group("/sect")
	{
		sect.GET("/list", ctl.GetSectList)
		sect.GET("/:sectID", ctl.GetSect)
	}

	r.GET("/chat/recent", middleware.AuthMiddleware(tokens), ctl.GetRecentChat)
	r.GET("/online", ctl.GetOnline)

	// game sessions; the token travels as a query parameter
	r.GET("/ws", hub.HandleWebSocket)
}
