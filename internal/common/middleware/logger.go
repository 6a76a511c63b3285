package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agora-backend/internal/common/logger"
	"agora-backend/internal/platform/monitoring"
)

const HeaderProcessTime = "X-Process-Time"

// timedWriter проставляет X-Process-Time перед отправкой заголовков
type timedWriter struct {
	gin.ResponseWriter
	start time.Time
}

func (w *timedWriter) stamp() {
	if !w.ResponseWriter.Written() {
		w.Header().Set(HeaderProcessTime, formatSeconds(time.Since(w.start)))
	}
}

func (w *timedWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timedWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

// Logger пишет строку лога на каждый запрос и отдает счетчики в sink
func Logger(sink monitoring.Sink) gin.HandlerFunc {
	sink = monitoring.Safe(sink)

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		tw := &timedWriter{ResponseWriter: c.Writer, start: start}
		c.Writer = tw

		c.Next()

		// ответы без тела еще не отправили заголовки
		tw.stamp()
		latency := time.Since(start)
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		sink.IncrementAPIRequests(endpoint, c.Request.Method, status)
		if status >= 400 {
			sink.IncrementAPIErrors(endpoint, status)
		}
		sink.TrackRequestDuration(latency)

		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = logger.Error()
		case status >= 400:
			evt = logger.Warn()
		default:
			evt = logger.Info()
		}
		evt.
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("body_size", c.Writer.Size()).
			Msg("Request processed")
	}
}
