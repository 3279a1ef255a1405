package qa

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves Q&A endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a Q&A handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Submit handles POST /questions.
func (h *Handler) Submit(c *gin.Context) {
	var in SubmitInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	q, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, q)
}

// BySession handles GET /questions/sessions/:id?answered=.
func (h *Handler) BySession(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	answered, err := utils.QueryBool(c, "answered")
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	list, err := h.svc.BySession(c.Request.Context(), id, answered)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// ByParticipant handles GET /questions/participants/:id.
func (h *Handler) ByParticipant(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	list, err := h.svc.ByParticipant(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// ByTrainer handles GET /questions/trainers/:id?answered=&session_id=.
func (h *Handler) ByTrainer(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	answered, err := utils.QueryBool(c, "answered")
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	sessionID, err := utils.QueryID(c, "session_id")
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	list, err := h.svc.ByTrainer(c.Request.Context(), id, answered, sessionID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// answeredFlag reads the optional is_answered body field. Absent or empty bodies mean true.
func answeredFlag(c *gin.Context) (bool, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return false, apperror.Validation("invalid request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true, nil
	}
	var req struct {
		IsAnswered json.RawMessage `json:"is_answered"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return false, apperror.Validation("invalid request: " + err.Error())
	}
	if len(req.IsAnswered) == 0 || string(req.IsAnswered) == "null" {
		return true, nil
	}
	var b bool
	if err := json.Unmarshal(req.IsAnswered, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(req.IsAnswered, &s); err == nil {
		if b, err := utils.ParseBool(s); err == nil {
			return b, nil
		}
	}
	var n float64
	if err := json.Unmarshal(req.IsAnswered, &n); err == nil && (n == 0 || n == 1) {
		return n == 1, nil
	}
	return false, apperror.ValidationFields("invalid request", map[string]string{"is_answered": "must be a boolean"})
}

// MarkAnswered handles POST and PATCH /questions/:id/mark-answered.
func (h *Handler) MarkAnswered(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "question")
	if !ok {
		return
	}
	answered, err := answeredFlag(c)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	state, err := h.svc.MarkAnswered(c.Request.Context(), id, answered)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, state)
}

// Register mounts the /questions routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
	rg.GET("/sessions/:id", h.BySession)
	rg.GET("/participants/:id", h.ByParticipant)
	rg.GET("/trainers/:id", h.ByTrainer)
	rg.POST("/:id/mark-answered", h.MarkAnswered)
	rg.PATCH("/:id/mark-answered", h.MarkAnswered)
}
