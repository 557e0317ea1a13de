package node

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Node is an HTTP-serving component. Serve blocks until ctx is cancelled or
// the listener fails.
type Node interface {
	NodeID() string
	Kind() string
	HTTPRouter() *gin.Engine
	Serve(ctx context.Context) error
}
