package participants

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/internal/middleware"
	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves participant, participant type and account endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a participants handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// BatchRequest carries a list of participant ids.
type BatchRequest struct {
	IDs []int64 `json:"ids"`
}

// List handles GET /participants.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Create handles POST /participants.
func (h *Handler) Create(c *gin.Context) {
	var in ParticipantInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, p)
}

// Get handles GET /participants/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, p)
}

// ByNIC handles GET /participants/nic/:nic.
func (h *Handler) ByNIC(c *gin.Context) {
	p, err := h.svc.ByNIC(c.Request.Context(), c.Param("nic"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, p)
}

// Batch handles POST /participants/batch.
func (h *Handler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := utils.BindJSON(c, &req); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	list, err := h.svc.ByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Delete handles DELETE /participants/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Participant deleted successfully."})
}

// Sessions handles GET /participants/:id/sessions.
func (h *Handler) Sessions(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	info, err := h.svc.Sessions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, info)
}

// Types handles GET /participant-types.
func (h *Handler) Types(c *gin.Context) {
	list, err := h.svc.Types(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// CreateType handles POST /participant-types.
func (h *Handler) CreateType(c *gin.Context) {
	var in TypeInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	t, err := h.svc.CreateType(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, t)
}

// UpdateType handles PUT /participant-types/:id.
func (h *Handler) UpdateType(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant type")
	if !ok {
		return
	}
	var in TypeInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	t, err := h.svc.UpdateType(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, t)
}

// DeleteType handles DELETE /participant-types/:id.
func (h *Handler) DeleteType(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant type")
	if !ok {
		return
	}
	if err := h.svc.DeleteType(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Participant type deleted successfully."})
}

// RequiredFields handles GET /participant-types/:id/required-fields.
func (h *Handler) RequiredFields(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant type")
	if !ok {
		return
	}
	rf, err := h.svc.TypeRequiredFields(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, rf)
}

// Signup handles POST /accounts/signup.
func (h *Handler) Signup(c *gin.Context) {
	var in SignupInput
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	p, err := h.svc.Signup(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, gin.H{"message": "Signup successful.", "participant_id": p.ID})
}

// Signin handles POST /accounts/signin.
func (h *Handler) Signin(c *gin.Context) {
	var in Credentials
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	res, err := h.svc.Signin(c.Request.Context(), in)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, res)
}

// Profile handles GET /accounts/profile/:id.
func (h *Handler) Profile(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	p, err := h.svc.Profile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, p)
}

// EditProfile handles PUT /accounts/profile/:id.
func (h *Handler) EditProfile(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "participant")
	if !ok {
		return
	}
	var u ProfileUpdate
	if err := utils.BindJSON(c, &u); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	p, err := h.svc.EditProfile(c.Request.Context(), id, u)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, p)
}

// ChangePassword handles POST /accounts/change-password for the signed-in participant.
func (h *Handler) ChangePassword(c *gin.Context) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var in PasswordChange
	if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), id, in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Password changed successfully."})
}

// RegisterParticipants mounts the /participants routes on rg.
func (h *Handler) RegisterParticipants(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/batch", h.Batch)
	rg.GET("/nic/:nic", h.ByNIC)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/sessions", h.Sessions)
}

// RegisterTypes mounts the /participant-types routes on rg.
func (h *Handler) RegisterTypes(rg *gin.RouterGroup) {
	rg.GET("", h.Types)
	rg.POST("", h.CreateType)
	rg.PUT("/:id", h.UpdateType)
	rg.DELETE("/:id", h.DeleteType)
	rg.GET("/:id/required-fields", h.RequiredFields)
}

// RegisterAccounts mounts the /accounts routes on rg. auth must authenticate the
// caller; profile routes additionally require the caller to own the profile.
func (h *Handler) RegisterAccounts(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.POST("/signup", h.Signup)
	rg.POST("/signin", h.Signin)
	self := middleware.RequireSelf("id")
	rg.GET("/profile/:id", auth, self, h.Profile)
	rg.PUT("/profile/:id", auth, self, h.EditProfile)
	rg.POST("/change-password", auth, h.ChangePassword)
}
