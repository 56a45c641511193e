package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

// etagWriter buffers the handler's response so a validator can be computed
// over the exact serialized bytes. A handler that flushes explicitly is
// streaming; the buffer is released and the writer goes passthrough.
type etagWriter struct {
	gin.ResponseWriter
	body     *bytes.Buffer
	status   int
	streamed bool
}

func (w *etagWriter) WriteHeader(code int) {
	if w.streamed {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.status = code
}

func (w *etagWriter) WriteHeaderNow() {
	if w.streamed {
		w.ResponseWriter.WriteHeaderNow()
	}
}

func (w *etagWriter) Write(b []byte) (int, error) {
	if w.streamed {
		return w.ResponseWriter.Write(b)
	}
	return w.body.Write(b)
}

func (w *etagWriter) WriteString(s string) (int, error) {
	if w.streamed {
		return w.ResponseWriter.WriteString(s)
	}
	return w.body.WriteString(s)
}

func (w *etagWriter) Status() int {
	if !w.streamed && w.status != 0 {
		return w.status
	}
	return w.ResponseWriter.Status()
}

func (w *etagWriter) Flush() {
	if !w.streamed {
		w.streamed = true
		if w.status != 0 {
			w.ResponseWriter.WriteHeader(w.status)
		}
		if w.body.Len() > 0 {
			_, _ = w.ResponseWriter.Write(w.body.Bytes())
			w.body.Reset()
		}
	}
	w.ResponseWriter.Flush()
}

// ETag computes a content-derived validator over successful API responses
// and short-circuits to 304 when the client already holds the same bytes.
// The handler always runs in full; only the write to the wire is skipped.
// Anything unusual (non-200, empty body, streaming) fails open: the
// response passes through untouched with no validator.
func ETag() gin.HandlerFunc {
	return func(c *gin.Context) {
		ew := &etagWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = ew

		c.Next()

		c.Writer = ew.ResponseWriter
		if ew.streamed {
			return
		}

		status := ew.status
		if status == 0 {
			status = http.StatusOK
		}
		w := ew.ResponseWriter

		if status == http.StatusOK && ew.body.Len() > 0 {
			sum := sha1.Sum(ew.body.Bytes())
			tag := `"` + hex.EncodeToString(sum[:]) + `"`
			w.Header().Set("ETag", tag)
			if c.GetHeader("If-None-Match") == tag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}

		w.WriteHeader(status)
		if ew.body.Len() > 0 {
			_, _ = w.Write(ew.body.Bytes())
		}
	}
}
