package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/metrics"
)

const msgRouteNotFound = "Halaman tidak ditemukan"

type Options struct {
	Service Service
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer    prometheus.Gatherer
	IsProd      bool
	StaticDir   string
	CORSOrigins []string
}

func NewRouter(opts Options) *gin.Engine {
	h := NewHandler(opts.Service, opts.IsProd)

	r := gin.New()
	r.Use(RequestID(opts.Logger))
	r.Use(AccessLog())
	r.Use(Instrument(opts.Metrics))
	r.Use(Recoverer(opts.IsProd))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	api := r.Group("/api")
	api.GET("/stats", h.Stats)
	api.GET("/rsvp", h.ListRSVPs)
	api.GET("/rsvp/:id", h.GetRSVP)
	api.POST("/rsvp", h.CreateRSVP)
	api.PUT("/rsvp/:id", h.UpdateRSVP)
	api.DELETE("/rsvp/:id", h.DeleteRSVP)
	api.GET("/wishes", h.ListWishes)
	api.POST("/wishes", h.CreateWish)

	r.GET("/healthz", h.Health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	r.NoRoute(staticOrNotFound(opts.StaticDir))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", requestIDHeader},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// staticOrNotFound serves the invitation page from dir for GET requests
// outside /api. Everything else gets a JSON 404.
func staticOrNotFound(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		urlPath := c.Request.URL.Path
		if dir != "" && (method == http.MethodGet || method == http.MethodHead) && !strings.HasPrefix(urlPath, "/api/") {
			if file, ok := staticFile(dir, urlPath); ok {
				c.File(file)
				return
			}
		}
		c.JSON(http.StatusNotFound, errorResponse{Error: msgRouteNotFound})
	}
}

func staticFile(dir, urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	file := filepath.Join(dir, filepath.FromSlash(clean))

	info, err := os.Stat(file)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		file = filepath.Join(file, "index.html")
		if info, err = os.Stat(file); err != nil || info.IsDir() {
			return "", false
		}
	}
	return file, true
}
