// Package ui serves analysis results as HTML reports.
package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"socialgap/app"
	"socialgap/domain/core"
	"socialgap/internal/report"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App is the report viewer
type App struct {
	router    *chi.Mux
	service   *app.Service
	templates *template.Template
	logger    *zap.Logger
}

// NewApp creates the viewer over service
func NewApp(service *app.Service, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		templates: templates,
		logger:    logger.Named("ui"),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// Router returns the chi router, for mounting other handlers
func (a *App) Router() *chi.Mux {
	return a.router
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/reports/{name}", a.handleReport)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	table := a.service.Table()
	a.renderTemplate(w, http.StatusOK, "index.html", map[string]any{
		"Rows":      table.Len(),
		"Programs":  table.Programs(),
		"Functions": app.Catalog(),
	})
}

type reportPage struct {
	Function string
	CallID   string
	Body     template.HTML
	Error    *app.ErrorResult
}

// handleReport runs a function with the query string as arguments and
// renders its markdown report
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	callID := core.NewCallID()
	page := reportPage{Function: name, CallID: string(callID)}

	status := http.StatusOK
	result, err := a.call(r, name, callID)
	if err == nil {
		doc, ok := report.For(result)
		if !ok {
			body, marshalErr := json.MarshalIndent(result, "", "  ")
			if marshalErr != nil {
				err = marshalErr
			} else {
				page.Body = template.HTML("<pre>" + template.HTMLEscapeString(string(body)) + "</pre>")
			}
		} else {
			page.Body = template.HTML(report.HTML(doc.Markdown()))
		}
	}
	if err != nil {
		res := app.NewErrorResult(err)
		page.Error = &res
		switch res.Kind {
		case app.KindSchema:
			status = http.StatusNotFound
		case app.KindInternal:
			status = http.StatusInternalServerError
		default:
			status = http.StatusBadRequest
		}
	}
	a.renderTemplate(w, status, "report.html", page)
}

func (a *App) call(r *http.Request, name string, callID core.CallID) (any, error) {
	raw, err := json.Marshal(QueryArguments(r.URL.Query()))
	if err != nil {
		return nil, err
	}
	args, err := app.ParseArguments(raw)
	if err != nil {
		return nil, err
	}
	return a.service.Call(app.WithCallID(r.Context(), callID), name, args)
}

// QueryArguments converts a query string to an argument object. Dotted keys
// nest ("filters.sex=Mujer"), numeric values become numbers and repeated
// keys become lists.
func QueryArguments(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		target := out
		parts := strings.Split(key, ".")
		for _, p := range parts[:len(parts)-1] {
			next, ok := target[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				target[p] = next
			}
			target = next
		}
		leaf := parts[len(parts)-1]
		if len(vals) == 1 {
			target[leaf] = scalar(vals[0])
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = scalar(v)
		}
		target[leaf] = list
	}
	return out
}

func scalar(v string) any {
	var n json.Number
	if err := json.Unmarshal([]byte(v), &n); err == nil {
		return n
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func (a *App) renderTemplate(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("template error", zap.String("template", name), zap.Error(err))
	}
}
