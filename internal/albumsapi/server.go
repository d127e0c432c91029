package albumsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/albumdeck/internal/state"
)

var requestsServed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "albumdeck_mockapi",
	Name:      "requests_total",
	Help:      "Requests served by the albums mock API, by route template and status code.",
}, []string{"route", "code"})

// Handler serves the albums routes over a Repository.
type Handler struct {
	repo   *Repository
	logger *log.Logger
}

// NewHandler wraps repo. A nil logger discards output.
func NewHandler(repo *Repository, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{repo: repo, logger: logger}
}

// Router returns the mux with every albums route, the metrics endpoint and
// the CORS, recovery and accounting middlewares applied.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(h.recoverMiddleware, countMiddleware)

	r.HandleFunc("/albums", h.ListAlbums).Methods(http.MethodGet)
	r.HandleFunc("/albums", h.AddAlbum).Methods(http.MethodPut)
	// random must be registered before the numeric id routes
	r.HandleFunc("/albums/random", h.AddRandom).Methods(http.MethodPut)
	r.HandleFunc("/albums/artist/{artist}", h.AlbumsByArtist).Methods(http.MethodGet)
	r.HandleFunc("/albums/{id:[0-9]+}", h.GetAlbum).Methods(http.MethodGet)
	r.HandleFunc("/albums/{id:[0-9]+}", h.UpdateAlbum).Methods(http.MethodPatch)
	r.HandleFunc("/albums/{id:[0-9]+}", h.DeleteAlbum).Methods(http.MethodDelete)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return corsMiddleware(r)
}

// ListAlbums GET /albums
func (h *Handler) ListAlbums(w http.ResponseWriter, _ *http.Request) {
	albums := h.repo.List()
	if albums == nil {
		albums = []state.Album{}
	}
	writeJSON(w, albums, http.StatusOK)
}

// AddAlbum PUT /albums
func (h *Handler) AddAlbum(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, "request body must be a JSON object", http.StatusBadRequest)
		return
	}
	for _, key := range []string{"title", "artist", "price"} {
		if _, ok := fields[key]; !ok {
			writeError(w, fmt.Sprintf("must pass in a '%s'", key), http.StatusBadRequest)
			return
		}
	}
	var album state.Album
	if err := applyFields(&album, fields); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	created := h.repo.Create(album)
	h.logger.Info("album created", "id", created.ID, "title", created.Title)
	writeJSON(w, created, http.StatusOK)
}

// AddRandom PUT /albums/random
func (h *Handler) AddRandom(w http.ResponseWriter, _ *http.Request) {
	created := h.repo.Random()
	h.logger.Info("random album created", "id", created.ID, "title", created.Title)
	writeJSON(w, created, http.StatusOK)
}

// GetAlbum GET /albums/{id}. The album is returned as a one-element array.
func (h *Handler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	album, err := h.repo.Get(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, []state.Album{album}, http.StatusOK)
}

// AlbumsByArtist GET /albums/artist/{artist}
func (h *Handler) AlbumsByArtist(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["artist"]
	albums := h.repo.ByArtist(name)
	if len(albums) == 0 {
		writeError(w, fmt.Sprintf("failed to find an album with provided search: %s", name), http.StatusNotFound)
		return
	}
	writeJSON(w, albums, http.StatusOK)
}

// UpdateAlbum PATCH /albums/{id}
func (h *Handler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	fields, err := decodeFields(r)
	if err != nil || len(fields) == 0 {
		writeError(w, "could not update album", http.StatusBadRequest)
		return
	}
	var patchErr error
	_, err = h.repo.Update(id, func(a *state.Album) {
		next := *a
		if patchErr = applyFields(&next, fields); patchErr == nil {
			*a = next
		}
	})
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	if patchErr != nil {
		writeError(w, "could not update album", http.StatusBadRequest)
		return
	}
	h.logger.Info("album updated", "id", id)
	writeJSON(w, map[string]any{"message": "album successfully updated"}, http.StatusOK)
}

// DeleteAlbum DELETE /albums/{id}
func (h *Handler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(id); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Info("album removed", "id", id)
	writeJSON(w, map[string]any{"message": "album successfully removed"}, http.StatusOK)
}

// Serve runs the handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("albums mock API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("albums mock API stopped")
	return nil
}

func albumID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, "invalid album id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeFields(r *http.Request) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("body is null")
	}
	return fields, nil
}

// applyFields copies title, artist and price onto a. Prices may be JSON
// numbers or numeric strings.
func applyFields(a *state.Album, fields map[string]json.RawMessage) error {
	for key, raw := range fields {
		switch key {
		case "title":
			if err := json.Unmarshal(raw, &a.Title); err != nil {
				return fmt.Errorf("title must be a string")
			}
		case "artist":
			if err := json.Unmarshal(raw, &a.Artist); err != nil {
				return fmt.Errorf("artist must be a string")
			}
		case "price":
			price, err := parsePrice(raw)
			if err != nil {
				return err
			}
			a.Price = price
		default:
			return fmt.Errorf("unknown field %q", key)
		}
	}
	return nil
}

func parsePrice(raw json.RawMessage) (float32, error) {
	var n float32
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 32); err == nil {
			return float32(f), nil
		}
	}
	return 0, fmt.Errorf("price must be a number")
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, map[string]any{"errors": message}, statusCode)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PUT, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"url", r.URL.String(),
					"stack", string(debug.Stack()))
				writeError(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func countMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		requestsServed.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
