package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	requestStartKey    = "request_start"
	headerResponseTime = "X-Response-Time"
)

// timedWriter injects the elapsed-time header just before the first byte
// reaches the transport, since headers cannot be added afterwards.
type timedWriter struct {
	gin.ResponseWriter
	start    time.Time
	injected bool
}

func (w *timedWriter) inject() {
	if w.injected || w.Written() {
		// headers already on the wire; skip silently
		return
	}
	w.injected = true
	w.Header().Set(headerResponseTime, formatElapsed(time.Since(w.start)))
}

func (w *timedWriter) WriteHeader(code int) {
	w.inject()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timedWriter) WriteHeaderNow() {
	w.inject()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.inject()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.inject()
	return w.ResponseWriter.WriteString(s)
}

// Timing wraps the whole request lifecycle and reports wall-clock elapsed
// time: as a response header for API calls, and through Elapsed for page
// handlers that want to show it in the rendered output.
func Timing() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(requestStartKey, start)

		tw := &timedWriter{ResponseWriter: c.Writer, start: start}
		c.Writer = tw

		c.Next()

		// nothing written yet (e.g. bare status): still attach the header
		tw.inject()
	}
}

// Elapsed returns wall time since the request entered the timing wrapper.
func Elapsed(c *gin.Context) time.Duration {
	if v, ok := c.Get(requestStartKey); ok {
		if t, ok := v.(time.Time); ok {
			return time.Since(t)
		}
	}
	return 0
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
}
