// Package web serves the stage to browsers.
//
// The page holds the stage element and the control panel. Control changes
// are PUT to /api/settings as partial JSON and merged into the live
// settings; frames arrive over a server-sent event stream and replace the
// stage's markup wholesale.
package web

import (
	"context"
	_ "embed"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/san-kum/stickycaps/internal/config"
	"github.com/san-kum/stickycaps/internal/stage"
)

//go:embed page.html
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// FramePayload is the JSON body of a frame event.
type FramePayload struct {
	Seq      uint64          `json:"seq"`
	HTML     string          `json:"html"`
	Text     string          `json:"text"`
	Upper    float64         `json:"upperFraction"`
	Settings config.Settings `json:"settings"`
}

func payload(f stage.Frame) FramePayload {
	return FramePayload{
		Seq:      f.Seq,
		HTML:     f.Output.HTML(),
		Text:     f.Output.Text(),
		Upper:    f.Output.UpperFraction(),
		Settings: f.Settings,
	}
}

// Server provides the browser surface for a stage.
type Server struct {
	addr      string
	stage     *stage.Stage
	hub       *Hub
	logger    *log.Logger
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer wires a server to st, which must paint to hub.
func NewServer(addr string, st *stage.Stage, hub *Hub, logger *log.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:8024"
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		stage:     st,
		hub:       hub,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", s.handlePage)
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/settings", s.handleGetSettings)
	r.PUT("/api/settings", s.handlePutSettings)
	r.GET("/api/frame", s.handleFrame)
	r.GET("/api/frames", s.handleFrames)

	return r
}

// Start begins serving HTTP requests and returns once the listener is bound.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", "err", err)
		}
	}()
	s.logger.Info("serving", "url", "http://"+s.addr)
	return nil
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string { return s.addr }

// Stop ends all event streams and shuts the server down.
func (s *Server) Stop() error {
	s.hub.Close()
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type pageData struct {
	Settings    config.Settings
	FontCSS     template.CSS
	Fonts       map[config.FontFamily]string
	Initial     template.HTML
	MaxFPS      int
	MinFontSize int
	MaxFontSize int
}

func (s *Server) handlePage(c *gin.Context) {
	f := s.stage.Draw()
	c.HTML(http.StatusOK, "page", pageData{
		Settings: f.Settings,
		FontCSS:  template.CSS(f.Settings.FontFamily.CSS()),
		Fonts: map[config.FontFamily]string{
			config.Proportional: config.Proportional.CSS(),
			config.Monospaced:   config.Monospaced.CSS(),
		},
		// Output.HTML escapes all message text.
		Initial:     template.HTML(f.Output.HTML()),
		MaxFPS:      config.MaxFPS,
		MinFontSize: config.MinFontSize,
		MaxFontSize: config.MaxFontSize,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"uptime":      time.Since(s.startTime).String(),
		"subscribers": s.hub.Subscribers(),
		"dropped":     s.hub.Dropped(),
	})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.stage.Settings())
}

// handlePutSettings merges a partial settings document into the current
// settings, the same way each control only reports its own field. The merge
// happens under the stage lock so overlapping requests each keep their field.
func (s *Server) handlePutSettings(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied, err := s.stage.Apply(func(cur *config.Settings) error {
		next := *cur
		if err := binding.JSON.BindBody(body, &next); err != nil {
			return err
		}
		if err := next.Normalize(); err != nil {
			return err
		}
		*cur = next
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.logger.Debug("settings updated", "fps", applied.FPS, "probability", applied.Probability, "message", applied.Message)
	c.JSON(http.StatusOK, applied)
}

func (s *Server) handleFrame(c *gin.Context) {
	c.JSON(http.StatusOK, payload(s.stage.Draw()))
}

func (s *Server) handleFrames(c *gin.Context) {
	frames, cancel := s.hub.Subscribe()
	defer cancel()

	s.logger.Debug("stream opened", "remote", c.ClientIP())
	defer s.logger.Debug("stream closed", "remote", c.ClientIP())

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	// Paint immediately; an idle stage would otherwise never send anything.
	c.SSEvent("frame", payload(s.stage.Draw()))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case f, ok := <-frames:
			if !ok {
				return false
			}
			c.SSEvent("frame", payload(f))
			return true
		}
	})
}
