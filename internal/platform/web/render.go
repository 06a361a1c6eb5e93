package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_server/internal/platform/flash"
)

// Render renders an HTML template with the current user and pending flash
// messages injected alongside the handler's own data.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := User(c); ok {
		data["CurrentUser"] = user
	}
	data["Flashes"] = flash.Pop(c)
	c.HTML(status, name, data)
}

// NotFound renders the 404 error page and aborts the request.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "404.html", nil)
	c.Abort()
}

// Forbidden renders the 403 error page and aborts the request.
func Forbidden(c *gin.Context) {
	Render(c, http.StatusForbidden, "403.html", nil)
	c.Abort()
}

// ServerError renders the 500 error page and aborts the request.
func ServerError(c *gin.Context) {
	Render(c, http.StatusInternalServerError, "500.html", nil)
	c.Abort()
}
