package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"socialdash/internal/models"
	"socialdash/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home.html", "posts.html", "topics.html", "ask_ai.html", "post.html", "topic.html"}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format(models.DisplayDateLayout) },
	"dateptr": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(models.DisplayDateLayout)
	},
	"num": func(v *int64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *v)
	},
	"pct": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f%%", *v)
	},
	"fixed": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

// WebHandler renders the server-side pages.
type WebHandler struct {
	Store     Store
	logger    *zap.Logger
	templates map[string]*template.Template
}

// NewWebHandler creates a new WebHandler with parsed templates
func NewWebHandler(s Store, logger *zap.Logger) *WebHandler {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New(name).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return &WebHandler{Store: s, logger: logger.Named("web"), templates: pages}
}

// render buffers the page so a template error never leaves a half-written response.
func (h *WebHandler) render(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := h.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("Template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// HomePage renders the dashboard landing page with the newest posts.
func (h *WebHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	recent, err := h.Store.ListPosts(r.Context(), store.PostFilter{Limit: 5})
	if err != nil {
		h.logger.Error("Recent posts failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	topics, err := h.Store.ListTopics(r.Context())
	if err != nil {
		h.logger.Error("Topics failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "home.html", map[string]interface{}{
		"Title":      "Dashboard",
		"Recent":     recent,
		"TopicCount": len(topics),
	})
}

// PostsPage renders the posts table shell; rows come from /api/posts.
func (h *WebHandler) PostsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "posts.html", map[string]interface{}{"Title": "Posts"})
}

// TopicsPage renders the topics table shell; rows come from /api/topics-list.
func (h *WebHandler) TopicsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "topics.html", map[string]interface{}{"Title": "Topics"})
}

// AskPage renders the question box.
func (h *WebHandler) AskPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "ask_ai.html", map[string]interface{}{"Title": "Ask AI"})
}

// PostDetail renders the post detail page
func (h *WebHandler) PostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}
	post, err := h.Store.GetPostDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Post detail failed", zap.Int64("post_id", id), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "post.html", map[string]interface{}{
		"Title":  fmt.Sprintf("Post %d", id),
		"Detail": post,
	})
}

// TopicDetail renders the topic detail page
func (h *WebHandler) TopicDetail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "Topic not found", http.StatusNotFound)
		return
	}
	topic, err := h.Store.GetTopicDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Topic not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Topic detail failed", zap.Int64("topic_id", id), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, "topic.html", map[string]interface{}{
		"Title":  topic.Topic.Name,
		"Detail": topic,
	})
}
