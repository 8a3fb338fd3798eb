package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers POST /callback on r.
func RegisterRoutes(r gin.IRoutes, h Handler) {
	r.POST("/callback", h.Callback)
}
