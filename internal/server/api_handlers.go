package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"socialdash/internal/askai"
	"socialdash/internal/models"
	"socialdash/internal/store"
)

const maxBodyBytes = 1 << 20

// APIHandler handles JSON API requests
type APIHandler struct {
	Store    Store
	Asker    Asker
	ReadOnly Pinger
	Logger   *zap.Logger
}

func (h *APIHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.Logger.Error(msg, zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// AskAIQuery runs a natural-language question through the query pipeline.
func (h *APIHandler) AskAIQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "No question provided")
		return
	}
	if h.Asker == nil {
		respondError(w, http.StatusServiceUnavailable, "AI querying is not configured")
		return
	}

	resp, err := h.Asker.Answer(r.Context(), req.Question)
	if err != nil {
		status, body := askErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("Ask AI request failed", zap.Error(err), zap.String("sql", askai.SQLOf(err)))
		}
		respondJSON(w, status, body)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// askErrorResponse maps pipeline failures onto status codes and bodies.
func askErrorResponse(err error) (int, map[string]string) {
	switch {
	case errors.Is(err, askai.ErrEmptyQuestion):
		return http.StatusBadRequest, map[string]string{"error": "No question provided"}
	case errors.Is(err, askai.ErrInvalidQuery):
		return http.StatusBadRequest, map[string]string{
			"error": "The AI generated an invalid query.",
			"sql":   askai.SQLOf(err),
		}
	case errors.Is(err, askai.ErrExecution):
		return http.StatusInternalServerError, map[string]string{
			"error": askai.CauseMessage(err),
			"sql":   askai.SQLOf(err),
		}
	default:
		return http.StatusInternalServerError, map[string]string{"error": "Failed to process the question with AI."}
	}
}

// SearchSuggestions matches topics and posts for the search box.
func (h *APIHandler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	topics, posts, err := h.Store.SearchSuggestions(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.internalError(w, "Search suggestions failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"topics": topics,
		"posts":  posts,
	})
}

// TopicsList returns the filtered, sorted topics table.
func (h *APIHandler) TopicsList(w http.ResponseWriter, r *http.Request) {
	q, err := parseTopicQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	topics, err := h.Store.ListTopicSummaries(r.Context(), q)
	if err != nil {
		h.internalError(w, "Topic list failed", err)
		return
	}
	respondJSON(w, http.StatusOK, topics)
}

// Topics returns every topic id and name.
func (h *APIHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.Store.ListTopics(r.Context())
	if err != nil {
		h.internalError(w, "Topics failed", err)
		return
	}
	respondJSON(w, http.StatusOK, topics)
}

// Posts returns one page of the posts table.
func (h *APIHandler) Posts(w http.ResponseWriter, r *http.Request) {
	f, err := parsePostFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	posts, err := h.Store.ListPosts(r.Context(), f)
	if err != nil {
		h.internalError(w, "Post list failed", err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// GetPost handles API requests for a single post
func (h *APIHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	post, err := h.Store.GetPostDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		h.internalError(w, "Post detail failed", err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// GetTopic handles API requests for a single topic
func (h *APIHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	topic, err := h.Store.GetTopicDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Topic not found")
			return
		}
		h.internalError(w, "Topic detail failed", err)
		return
	}
	respondJSON(w, http.StatusOK, topic)
}

// Download serves every post with its topic names as posts.json.
func (h *APIHandler) Download(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.ExportPosts(r.Context())
	if err != nil {
		h.internalError(w, "Export failed", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="posts.json"`)
	respondJSON(w, http.StatusOK, posts)
}

type savePostRequest struct {
	PostData map[string]any `json:"post_data"`
	Tags     []string       `json:"tags"`
}

// SavePost stores one post and links its topics.
func (h *APIHandler) SavePost(w http.ResponseWriter, r *http.Request) {
	var req savePostRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil || len(req.PostData) == 0 || len(req.Tags) == 0 {
		respondError(w, http.StatusBadRequest, "Missing data")
		return
	}

	post, err := models.DecodePost(req.PostData)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Store.SavePost(r.Context(), post, req.Tags); err != nil {
		if errors.Is(err, store.ErrDuplicatePost) {
			respondJSON(w, http.StatusConflict, map[string]string{
				"error": "Post already exists in database. File skipped.",
				"code":  "DUPLICATE",
			})
			return
		}
		h.internalError(w, "Save post failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"post_id": strconv.FormatInt(post.PostID, 10),
	})
}

// Health pings both database pools.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"database": "ok"}
	code := http.StatusOK
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Logger.Warn("Primary database ping failed", zap.Error(err))
		status["database"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if h.ReadOnly != nil {
		status["read_only_database"] = "ok"
		if err := h.ReadOnly.Ping(r.Context()); err != nil {
			h.Logger.Warn("Read-only database ping failed", zap.Error(err))
			status["read_only_database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, status)
}
