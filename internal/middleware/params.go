package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/neusi/task-manager-api/internal/errors"
)

func paramKey(name string) string {
	return "param_" + name
}

// RequireIDParam parses the named URL parameter as an ID and rejects the request otherwise
func RequireIDParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(name), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+name)
			c.Abort()
			return
		}

		c.Set(paramKey(name), id)
		c.Next()
	}
}

// GetIDParam returns an ID parsed by RequireIDParam
func GetIDParam(c *gin.Context, name string) (uint64, bool) {
	value, exists := c.Get(paramKey(name))
	if !exists {
		return 0, false
	}
	id, ok := value.(uint64)
	return id, ok
}
