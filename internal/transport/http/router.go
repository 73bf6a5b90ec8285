package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the REST API, the live quiz socket and health check.
func NewRouter(api *API, ws *WSHandler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  originAllowed(allowedOrigins),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/ws", api.RequireAuth(), gin.WrapF(ws.ServeWS))
	api.Register(r.Group("/api/v1"))
	return r
}

// originAllowed permits the configured origins; an empty list allows any origin.
func originAllowed(allowed []string) func(origin string) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(origin string) bool {
		if len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// CheckOrigin adapts the allow-list to the websocket upgrader. Requests without an
// Origin header (non-browser clients) pass.
func CheckOrigin(allowed []string) func(r *http.Request) bool {
	allow := originAllowed(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allow(origin)
	}
}
