package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"appupdate-service/internal/account"
	"appupdate-service/internal/appmanage"
	"appupdate-service/internal/channel"
	"appupdate-service/internal/respond"
	"appupdate-service/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware assigns every request a snowflake id, echoed in the
// response header and available to the access log.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = utilities.NewSnowflakeID()
			}
			w.Header().Set(requestIDHeader, id)
			r.Header.Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLogMiddleware records one line per request: method, path, status,
// latency, remote address, user agent and request id. Rejections from the
// authorization middleware are logged with the status they produced.
func AccessLogMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Infow("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"latency_ms", float64(dur.Microseconds())/1000.0,
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", r.Header.Get(requestIDHeader),
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts all HTTP handlers on a standard library ServeMux.
// auth wraps the endpoints that require a valid bound access token.
func RegisterRoutes(
	accessLog *zap.SugaredLogger,
	accounts *account.Handler,
	channels *channel.Handler,
	apps *appmanage.Handler,
	auth func(http.Handler) http.Handler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		respond.OK(w, "pong")
	})

	// account endpoints
	mux.HandleFunc("POST /api/users/get_auth_captcha", accounts.GetAuthCaptcha)
	mux.HandleFunc("POST /api/users/register", accounts.Register)
	mux.HandleFunc("POST /api/users/login", accounts.Login)
	mux.HandleFunc("POST /api/users/refresh_token", accounts.RefreshToken)
	mux.Handle("POST /api/users/get_users_info", auth(http.HandlerFunc(accounts.Info)))

	// channel endpoints, all behind auth
	mux.Handle("POST /api/app_channel/create_app_channel", auth(http.HandlerFunc(channels.Create)))
	mux.Handle("POST /api/app_channel/get_app_channel_list", auth(http.HandlerFunc(channels.List)))
	mux.Handle("POST /api/app_channel/update_app_channel", auth(http.HandlerFunc(channels.Update)))
	mux.Handle("POST /api/app_channel/delete_app_channel", auth(http.HandlerFunc(channels.Delete)))
	mux.Handle("POST /api/app_channel/completely_delete_app_channel", auth(http.HandlerFunc(channels.PurgeDelete)))

	// app package uploads, behind auth
	mux.Handle("POST /api/app_manage/upload_app_file", auth(http.HandlerFunc(apps.UploadAppFile)))

	handler := RequestIDMiddleware()(AccessLogMiddleware(accessLog)(SecurityHeadersMiddleware()(mux)))
	return handler
}
