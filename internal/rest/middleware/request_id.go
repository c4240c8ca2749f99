package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pointloop/pointloop/internal/types"
)

// RequestIDMiddleware assigns each request an identifier, honoring one the
// client already supplied, and echoes it back in the response header.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateRequestID()
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
