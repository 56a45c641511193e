package handlers

import (
	"io"
	"net/http"

	"inkwell/internal/feed"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// FeedHub is wired by the router before the updates route is mounted.
var FeedHub *feed.Hub

// subscriberBuffer bounds how far a slow connection may lag before the
// broadcaster starts dropping its writes.
const subscriberBuffer = 16

// GET /api/updates — long-lived text/event-stream of change events.
func Updates(c *gin.Context) {
	if FeedHub == nil {
		respondError(c, http.StatusServiceUnavailable, "store_unavailable", "change feed not running")
		return
	}

	sub := FeedHub.Subscribe(subscriberBuffer)
	defer FeedHub.Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			_ = sse.Encode(w, sse.Event{Event: "message", Data: ev})
			return true
		}
	})
}
