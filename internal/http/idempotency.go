package http

import (
	"bytes"
	"net/http"
	"time"

	"fintrack/internal/cache"
)

const idempotencyHeader = "Idempotency-Key"

// recordedResponse is a completed response stored for replay.
type recordedResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// idempotencyStore replays previously seen mutating requests. Keys live
// for 24 hours and are scoped to method and path, so the same key may be
// reused across different endpoints.
type idempotencyStore struct {
	cache *cache.LRUCache[recordedResponse]
}

func newIdempotencyStore() *idempotencyStore {
	return &idempotencyStore{
		cache: cache.NewLRUCache[recordedResponse](1000, 24*time.Hour),
	}
}

func (s *idempotencyStore) Cache() *cache.LRUCache[recordedResponse] {
	return s.cache
}

func (s *idempotencyStore) key(r *http.Request, clientKey string) string {
	return r.Method + " " + r.URL.Path + " " + clientKey
}

// recorder buffers a handler's response so it can be stored for replay.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *recorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}

// Middleware short-circuits repeated mutating requests that carry the
// same Idempotency-Key, returning the stored first response.
func (s *idempotencyStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientKey := r.Header.Get(idempotencyHeader)
		if clientKey == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete) {
			next.ServeHTTP(w, r)
			return
		}

		key := s.key(r, clientKey)
		if stored, ok := s.cache.Get(key); ok {
			w.Header().Set("Content-Type", stored.ContentType)
			w.Header().Set("Idempotency-Replay", "true")
			w.WriteHeader(stored.Status)
			w.Write(stored.Body)
			return
		}

		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		// Only successful outcomes are worth replaying; a failed attempt
		// should be retryable with the same key.
		if rec.status >= 200 && rec.status < 300 {
			s.cache.Set(key, recordedResponse{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
		}
	})
}
