package handlers

import (
	"html/template"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cory321/threadfolio/internal/format"
)

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: make(template.FuncMap),
	}
}

func (tc *TemplateCache) AddFunc(name string, fn interface{}) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load parses all templates in the templates/ dir
func (tc *TemplateCache) Load(dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	// Global template functions: the shared formatting helpers plus
	// pagination arithmetic.
	tc.funcs["currency"] = format.Currency
	tc.funcs["lineTotal"] = format.LineTotal
	tc.funcs["orderNumber"] = format.OrderNumber
	tc.funcs["initials"] = format.Initials
	tc.funcs["phone"] = format.Phone
	tc.funcs["date"] = format.Date
	tc.funcs["datePtr"] = format.DatePtr
	tc.funcs["contrastText"] = format.ContrastText
	tc.funcs["prevPage"] = func(currentPage int) int { return currentPage - 1 }
	tc.funcs["nextPage"] = func(currentPage int) int { return currentPage + 1 }

	// Find all HTML files
	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	for _, file := range files {
		name := filepath.Base(file)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFiles(file)
		if err != nil {
			slog.Error("Failed to parse template", "file", file, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}
