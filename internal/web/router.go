package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/trznica/internal/imageloader"
	"github.com/erazemk/trznica/internal/logging"
	"github.com/erazemk/trznica/internal/market"
	"github.com/erazemk/trznica/internal/metrics"
	"github.com/erazemk/trznica/internal/session"
	"github.com/erazemk/trznica/internal/view"
	webembed "github.com/erazemk/trznica/web"
)

// DefaultRenderTimeout bounds how long a page waits for its view to load.
const DefaultRenderTimeout = 3 * time.Second

// Options are the dependencies of the web frontend.
type Options struct {
	API           *market.API
	Registry      *imageloader.Registry
	CatalogImages *imageloader.Loader
	DetailImages  *imageloader.Loader
	Sessions      *session.Store
	Metrics       *metrics.Metrics
	RenderTimeout time.Duration
}

// Server holds all dependencies for page handlers.
type Server struct {
	Options
	Templates *Templates

	items view.ItemSource
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = DefaultRenderTimeout
	}

	s := &Server{
		Options:   opts,
		Templates: templates,
		items:     &purchaseRecorder{API: opts.API, metrics: opts.Metrics},
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /healthz", s.Healthz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	mux.HandleFunc("GET /blobs/{key}", s.BlobGet)

	// Public routes.
	mux.HandleFunc("GET /{$}", s.Home)
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Credential-gated routes.
	mux.Handle("GET /items/{id}", RequireCredentials(http.HandlerFunc(s.ItemDetailPage)))
	mux.Handle("POST /items/{id}/purchase", RequireCredentials(http.HandlerFunc(s.PurchaseSubmit)))

	var handler http.Handler = mux
	handler = middleware.Recoverer(handler)
	handler = logging.Middleware(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	return handler, nil
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// BlobGet handles GET /blobs/{key}. A handle is only served while the view
// owning it keeps it alive.
func (s *Server) BlobGet(w http.ResponseWriter, r *http.Request) {
	h, ok := s.Registry.Lookup(r.PathValue("key"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := h.Data()
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", h.MIME())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}

// settle waits for the current load round of v, up to the render timeout.
// An unsettled view renders whatever it has so far.
func (s *Server) settle(r *http.Request, v view.View) {
	ctx, cancel := context.WithTimeout(r.Context(), s.RenderTimeout)
	defer cancel()
	if err := v.Wait(ctx); err != nil {
		slog.Debug("rendering before load settled", "route", v.Route(), "error", err)
	}
}

// purchaseRecorder counts purchase attempts that reach the backend.
type purchaseRecorder struct {
	*market.API
	metrics *metrics.Metrics
}

func (p *purchaseRecorder) Purchase(ctx context.Context, id, userID int64, token string) error {
	err := p.API.Purchase(ctx, id, userID, token)
	if p.metrics != nil {
		p.metrics.ObservePurchase(err)
	}
	return err
}
