package profiles

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/middleware"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/respond"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/object"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/util"
)

const maxImageSize = 5 << 20

// Handler wires HTTP handlers to the profile service.
type Handler struct {
	Svc    *Service
	Images object.Store
}

// NewHandler constructs a Handler. images may be nil to disable uploads.
func NewHandler(svc *Service, images object.Store) *Handler {
	return &Handler{Svc: svc, Images: images}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.get)
	rg.PATCH("/profile", h.patch)
	rg.POST("/profile/image", h.uploadImage)
}

type profileResponse struct {
	Profile      BusinessProfile `json:"profile"`
	Completeness Completeness    `json:"completeness"`
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		}
		return
	}
	respond.OK(c, profileResponse{Profile: p, Completeness: CheckCompleteness(p)})
}

func (h *Handler) patch(c *gin.Context) {
	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	// Image references only come from uploads.
	patch.ProductImageRef = nil
	if patch.IsEmpty() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "patch contains no values", nil)
		return
	}

	p, err := h.Svc.Upsert(c.Request.Context(), middleware.UserIDFromContext(c), patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPatch):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update profile", nil)
		}
		return
	}
	respond.OK(c, profileResponse{Profile: p, Completeness: CheckCompleteness(p)})
}

func (h *Handler) uploadImage(c *gin.Context) {
	if h.Images == nil {
		respond.Error(c, http.StatusNotImplemented, "not_configured", "image storage is not configured", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "image is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read image", nil)
		return
	}
	defer file.Close()

	var sniff [512]byte
	n, err := io.ReadFull(file, sniff[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read image", nil)
		return
	}
	if !util.IsImageName(fileHeader.Filename) || !strings.HasPrefix(http.DetectContentType(sniff[:n]), "image/") {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "only image uploads are accepted", nil)
		return
	}

	stored, err := h.Images.Save(c.Request.Context(), userID, fileHeader.Filename, io.MultiReader(bytes.NewReader(sniff[:n]), file))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store image", nil)
		return
	}

	p, err := h.Svc.Upsert(c.Request.Context(), userID, Patch{ProductImageRef: String(stored.Key)})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update profile", nil)
		return
	}
	respond.Created(c, gin.H{"image": stored, "profile": p})
}
