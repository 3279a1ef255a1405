package materials

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workshop-hub/backend/pkg/apperror"
	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/utils"
)

// Handler serves session material endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a materials handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /materials/sessions/:id.
func (h *Handler) List(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Upload handles POST /materials/sessions/:id with either a JSON body carrying a
// url or a multipart form carrying a file.
func (h *Handler) Upload(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "session")
	if !ok {
		return
	}
	var in UploadInput
	var file *File
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&in); err != nil {
			response.Error(c, h.logger, apperror.Validation("invalid request: "+err.Error()))
			return
		}
		fh, err := c.FormFile("file")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(c, "invalid file upload")
			return
		}
		if fh != nil {
			rc, err := fh.Open()
			if err != nil {
				h.logger.Error("open uploaded file failed", zap.Error(err))
				response.Internal(c, "failed to read file")
				return
			}
			defer rc.Close()
			file = &File{Name: fh.Filename, Size: fh.Size, Body: rc}
		}
	} else if err := utils.BindJSON(c, &in); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	m, err := h.svc.Upload(c.Request.Context(), id, in, file)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, m)
}

// Delete handles DELETE /materials/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "material")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"message": "Material deleted."})
}

// DownloadURL handles GET /materials/:id/download-url.
func (h *Handler) DownloadURL(c *gin.Context) {
	id, ok := utils.ParamID(c, "id", "material")
	if !ok {
		return
	}
	d, err := h.svc.DownloadURL(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, d)
}

// Register mounts the /materials routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/sessions/:id", h.List)
	rg.POST("/sessions/:id", h.Upload)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/download-url", h.DownloadURL)
}
