package handlers

import (
	_ "embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type homePage struct {
	ChatPath   string
	ImagePath  string
	ResetPath  string
	StreamPath string
}

type HomeHandler struct {
	log *zap.SugaredLogger
}

func NewHomeHandler(log *zap.SugaredLogger) *HomeHandler {
	return &HomeHandler{log: log}
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, homePage{
		ChatPath:   "/api/chat",
		ImagePath:  "/api/image-analysis",
		ResetPath:  "/api/reset",
		StreamPath: "/api/chat/stream",
	})
	if err != nil {
		h.log.Errorw("Failed to render home page", "error", err)
	}
}
