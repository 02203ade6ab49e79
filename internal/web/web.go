package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"crowdqr/internal/api/middleware"
	"crowdqr/internal/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server renders the audience and DJ pages. It is an independent
// deployable that only talks to the REST API.
type Server struct {
	cfg    *config.Config
	api    *APIClient
	router *gin.Engine
}

func New(cfg *config.Config) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		api:    NewAPIClient(cfg.Web.APIBaseURL),
		router: gin.New(),
	}

	s.router.Use(middleware.SilentLogger())
	s.router.Use(middleware.Recovery())

	tmpl := template.Must(template.ParseFS(templatesFS, "templates/*.html"))
	s.router.SetHTMLTemplate(tmpl)

	s.router.GET("/", s.indexPage)
	s.router.GET("/event/:slug", s.eventPage)
	s.router.GET("/dj", s.djPage)
	s.router.GET("/healthz", s.healthz)

	return s
}

func (s *Server) indexPage(c *gin.Context) {
	events, err := s.api.ActiveEvents()
	if err != nil {
		c.HTML(http.StatusBadGateway, "index.html", gin.H{"Error": "The request service is unavailable."})
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"Events": events})
}

func (s *Server) eventPage(c *gin.Context) {
	event, err := s.api.EventBySlug(c.Param("slug"))
	if err == ErrNotFound {
		c.HTML(http.StatusNotFound, "index.html", gin.H{"Error": "No such event."})
		return
	}
	if err != nil {
		c.HTML(http.StatusBadGateway, "index.html", gin.H{"Error": "The request service is unavailable."})
		return
	}
	c.HTML(http.StatusOK, "event.html", gin.H{
		"Event":      event,
		"APIBaseURL": s.cfg.Web.APIBaseURL,
	})
}

func (s *Server) djPage(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"APIBaseURL": s.cfg.Web.APIBaseURL,
	})
}

func (s *Server) healthz(c *gin.Context) {
	if !s.api.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "api unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start runs the page server.
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
