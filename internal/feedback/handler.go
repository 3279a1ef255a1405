package feedback

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves feedback endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a feedback handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// CreateQuestion handles POST /feedback/questions.
func (h *Handler) CreateQuestion(c *gin.Context) {
	var in QuestionInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	fq, err := h.svc.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, fq)
}

// Questions handles GET /feedback/questions/:id where id is a session.
func (h *Handler) Questions(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	list, err := h.svc.Questions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Submit handles POST /feedback/responses.
func (h *Handler) Submit(c *gin.Context) {
	var in ResponseInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	status := http.StatusCreated
	if res.Updated {
		status = http.StatusOK
	}
	response.WithStatus(c, status, res)
}

// Responses handles GET /feedback/responses/:id where id is a session.
func (h *Handler) Responses(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	list, err := h.svc.Responses(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Register mounts the /feedback routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/questions", h.CreateQuestion)
	rg.GET("/questions/:id", h.Questions)
	rg.POST("/responses", h.Submit)
	rg.GET("/responses/:id", h.Responses)
}
