package frontend

import (
	"fmt"
	"html/template"
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/emotion-detector/internal/errors"
	"github.com/ZanzyTHEbar/emotion-detector/internal/security"
)

const pageTitle = "Emotion Detector"

// IndexHandler serves the emotion detector page
type IndexHandler struct {
	tmpl           *template.Template
	maxInputLength int
}

// NewIndexHandler parses the embedded index template
func NewIndexHandler(maxInputLength int) (*IndexHandler, error) {
	fsys, err := GetTemplatesFS()
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}

	tmpl, err := LoadIndexTemplate(fsys)
	if err != nil {
		return nil, err
	}

	return &IndexHandler{tmpl: tmpl, maxInputLength: maxInputLength}, nil
}

// Serve renders the page with the request's CSP nonce
func (h *IndexHandler) Serve(c *gin.Context) {
	nonce := security.GetNonce(c)
	if nonce == "" {
		slog.Warn("CSP nonce not found in context, generating new one")
		var err error
		nonce, err = security.GenerateNonce()
		if err != nil {
			apperrors.Respond(c, apperrors.NewInternalError("failed to generate nonce", err))
			return
		}
	}

	data := PageData{
		Title:          pageTitle,
		Nonce:          nonce,
		MaxInputLength: h.maxInputLength,
	}

	if err := RenderIndex(c, h.tmpl, data); err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to render index.html", "error", err)
		apperrors.Respond(c, apperrors.NewInternalError("failed to render page", err))
	}
}
