package trainers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves trainer and assignment endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a trainers handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// AssignRequest is the body for POST /trainers/sessions/assign.
type AssignRequest struct {
	SessionID  int64   `json:"session_id" binding:"required,gt=0"`
	TrainerIDs []int64 `json:"trainer_ids" binding:"required"`
}

// RemoveRequest is the body for DELETE /trainers/sessions/remove.
type RemoveRequest struct {
	SessionID int64 `json:"session_id" binding:"required,gt=0"`
	TrainerID int64 `json:"trainer_id" binding:"required,gt=0"`
}

// List handles GET /trainers.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Create handles POST /trainers.
func (h *Handler) Create(c *gin.Context) {
	var in TrainerInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, t)
}

// Update handles PUT /trainers/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	var in TrainerInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /trainers/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Trainer deleted successfully."})
}

// Details handles GET /trainers/:id/details.
func (h *Handler) Details(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	d, err := h.svc.Details(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, d)
}

// Login handles POST /trainers/login.
func (h *Handler) Login(c *gin.Context) {
	var in CredentialInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	res, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, res)
}

// CreateCredential handles POST /trainers/:id/credential.
func (h *Handler) CreateCredential(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	var in CredentialInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if _, err := h.svc.CreateCredential(c.Request.Context(), id, in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, gin.H{"message": "Trainer credential created successfully."})
}

// UpdateCredential handles PUT /trainers/:id/credential.
func (h *Handler) UpdateCredential(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "trainer")
	if !ok {
		return
	}
	var in CredentialInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if _, err := h.svc.UpdateCredential(c.Request.Context(), id, in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Credential updated successfully."})
}

// Assign handles POST /trainers/sessions/assign.
func (h *Handler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	created, err := h.svc.Assign(c.Request.Context(), req.SessionID, req.TrainerIDs)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, gin.H{"message": "Trainers assigned successfully.", "assigned_trainers": created})
}

// Remove handles DELETE /trainers/sessions/remove.
func (h *Handler) Remove(c *gin.Context) {
	var req RemoveRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if err := h.svc.Unassign(c.Request.Context(), req.SessionID, req.TrainerID); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Trainer removed successfully."})
}

// Register mounts the /trainers routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/login", h.Login)
	rg.POST("/sessions/assign", h.Assign)
	rg.DELETE("/sessions/remove", h.Remove)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/details", h.Details)
	rg.POST("/:id/credential", h.CreateCredential)
	rg.PUT("/:id/credential", h.UpdateCredential)
}
