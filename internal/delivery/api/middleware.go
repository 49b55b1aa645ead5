package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"mcdiscord/internal/application"

	"github.com/go-chi/chi/v5/middleware"
)

func authenticate(token string, logger application.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			defer func() {
				logger.Debug("%s %s -> %d in %s [%s]", r.Method, r.URL.Path, ww.Status(),
					time.Since(t1), middleware.GetReqID(r.Context()))
			}()

			header := r.Header.Get("Authorization")
			given, found := strings.CutPrefix(header, "Bearer ")
			if !found || given == "" {
				fail(ww, r, http.StatusUnauthorized, "Token not found")
				return
			}
			if token == "" || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				fail(ww, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
