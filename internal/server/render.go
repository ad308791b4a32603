package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/letsssgooo/quizweb/internal/quiz"
)

//go:embed templates/*.html
var templatesFS embed.FS

type errorPage struct {
	Title   string
	Message string
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"inc":    func(i int) int { return i + 1 },
		"letter": quiz.IndexToLetter,
		"percent": func(p float64) string {
			return fmt.Sprintf("%.1f", p)
		},
	}

	return template.New("views").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// render выполняет шаблон в буфер, чтобы ошибка шаблона не оставила полуответ.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.views.ExecuteTemplate(&buf, name, data); err != nil {
		h.logFailure(r, http.StatusInternalServerError, "cannot render view", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	h.render(w, r, status, "error", errorPage{Title: title, Message: message})
}
