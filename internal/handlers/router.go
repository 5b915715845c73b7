package handlers

import (
	"log/slog"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"friendship-service/internal/middleware"
)

type Router struct {
	Users    *UserHandler
	Friends  *FriendHandler
	Presence *PresenceHandler
	// Auth resolves the caller; usually middleware.JWTAuth.
	Auth   gin.HandlerFunc
	Logger *slog.Logger
}

func (rt Router) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(rt.Logger), middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(nethttp.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("", rt.Auth)
	auth.GET("/users", rt.Users.ListUsers)
	auth.GET("/users/eligible", rt.Users.ListEligible)
	auth.GET("/users/me", rt.Users.GetMe)
	auth.GET("/users/:id", rt.Users.GetUserByID)

	auth.POST("/friends/requests", rt.Friends.SendRequest)
	auth.GET("/friends/requests/received", rt.Friends.ListReceived)
	auth.GET("/friends/requests/received/count", rt.Friends.CountReceived)
	auth.PUT("/friends/requests/:id/accept", rt.Friends.AcceptRequest)
	auth.PUT("/friends/requests/:id/reject", rt.Friends.RejectRequest)
	auth.GET("/friends", rt.Friends.ListFriends)
	auth.DELETE("/friends/:friend_id", rt.Friends.DeleteFriend)

	auth.PUT("/presence", rt.Presence.UpdatePresence)
	auth.GET("/friends/presence", rt.Presence.FriendsPresence)

	return r
}
