package httpapi

import (
	"log"
	"net/http"
	"time"

	"elearning-backend-go/internal/session"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// RequestLogger gives every request a fresh session and logs the outcome
// together with whoever the session resolved to.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sess := session.New()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r.WithContext(session.WithSession(r.Context(), sess)))
		if recorder.status == 0 {
			recorder.status = http.StatusOK
		}
		caller := "-"
		if who, ok := sess.Identity(); ok {
			caller = who.ID + "/" + string(who.Role)
		}
		log.Printf("%s %s %d %dB %s %s", r.Method, r.URL.Path, recorder.status, recorder.bytes, time.Since(start), caller)
	})
}
