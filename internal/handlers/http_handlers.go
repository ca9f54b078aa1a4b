package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"raspadita/internal/scratch"
	"raspadita/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
)

const (
	profileCookie    = "raspadita_profile"
	profileKey       = "profileID"
	profileCookieAge = 10 * 365 * 24 * 60 * 60
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the game service.
type HTTPHandler struct {
	service   *services.GameService
	templates *template.Template
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.GameService, templates *template.Template) *HTTPHandler {
	return &HTTPHandler{
		service:   service,
		templates: templates,
	}
}

// ProfileMiddleware identifies the browser profile by cookie, issuing a new
// one on first visit. The profile plays the role of the browser's local storage.
func (h *HTTPHandler) ProfileMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(profileCookie)
		if err == nil {
			_, err = uuid.Parse(id)
		}
		if err != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(profileCookie, id, profileCookieAge, "/", "", false, true)
		}
		c.Set(profileKey, id)
		c.Next()
	}
}

// RegisterPublicRoutes registers routes that don't need a profile.
func (h *HTTPHandler) RegisterPublicRoutes(router gin.IRouter) {
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
}

// RegisterProfileRoutes registers the game routes. The group must use ProfileMiddleware.
func (h *HTTPHandler) RegisterProfileRoutes(router gin.IRouter) {
	router.GET("/", h.ShowIndex)
	router.GET("/api/state", h.GetState)
	router.POST("/api/register", h.Register)
	router.POST("/api/scratch", h.Scratch)
	router.POST("/api/reset", h.Reset)
	router.GET("/api/share", h.Share)
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	buf := new(bytes.Buffer)
	if err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData); err != nil {
		logger.Infof("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	pageData["PageContent"] = template.HTML(buf.String())

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, "layout.html", pageData); err != nil {
		logger.Infof("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// ShowIndex renders the game page; the page script drives it through the API.
func (h *HTTPHandler) ShowIndex(c *gin.Context) {
	view, err := h.service.Load(c.Request.Context(), c.GetString(profileKey))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.renderPage(c, gin.H{"title": "Raspadita Ganadora", "View": view}, "index.html")
}

// GetState returns what the page should show on load.
func (h *HTTPHandler) GetState(c *gin.Context) {
	view, err := h.service.Load(c.Request.Context(), c.GetString(profileKey))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Register handles the registration form submission.
func (h *HTTPHandler) Register(c *gin.Context) {
	view, err := h.service.Register(c.Request.Context(), c.GetString(profileKey), c.PostForm("userName"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type scratchRequest struct {
	Card *int     `json:"card" binding:"required"`
	X    *float64 `json:"x" binding:"required"`
	Y    *float64 `json:"y" binding:"required"`
}

// Scratch applies one scratch input from the page.
func (h *HTTPHandler) Scratch(c *gin.Context) {
	var req scratchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.Scratch(c.Request.Context(), c.GetString(profileKey), *req.Card, *req.X, *req.Y)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reset handles the "play again" button.
func (h *HTTPHandler) Reset(c *gin.Context) {
	view, err := h.service.Reset(c.Request.Context(), c.GetString(profileKey))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Share returns the share link for the recorded prize.
func (h *HTTPHandler) Share(c *gin.Context) {
	link, err := h.service.Share(c.Request.Context(), c.GetString(profileKey))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, scratch.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotRegistered):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNoOutcome):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNoActiveGame):
		status = http.StatusConflict
	case errors.Is(err, services.ErrPromotionEnded):
		status = http.StatusGone
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
