package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"royal-villa/internal/domain"
	"royal-villa/internal/repository"
	"royal-villa/internal/response"
)

// AmenityHandler expone el CRUD de amenities. Cada amenity pertenece a una villa existente.
type AmenityHandler struct {
	logger    *zap.Logger
	amenities repository.AmenityRepository
	villas    repository.VillaRepository
	now       func() time.Time
}

func NewAmenityHandler(logger *zap.Logger, amenities repository.AmenityRepository, villas repository.VillaRepository) *AmenityHandler {
	return &AmenityHandler{
		logger:    logger,
		amenities: amenities,
		villas:    villas,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type amenityRequest struct {
	ID          int64  `json:"id"`
	VillaID     int64  `json:"villaId" binding:"required,gt=0"`
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
}

// List maneja GET /api/villa-amenities.
func (h *AmenityHandler) List(c *gin.Context) {
	amenities, err := h.amenities.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list amenities failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, "An error occurred while retrieving villa amenities", err.Error()))
		return
	}
	if amenities == nil {
		amenities = []domain.VillaAmenity{}
	}
	respond(c, response.Ok("Villa amenities retrieved successfully", amenities))
}

// Get maneja GET /api/villa-amenities/:id.
func (h *AmenityHandler) Get(c *gin.Context) {
	id := pathID(c)
	if id <= 0 {
		respond(c, response.NotFound("Villa amenity ID must be greater than 0"))
		return
	}
	amenity, err := h.amenities.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond(c, response.NotFound(fmt.Sprintf("Villa amenity with ID %d was not found", id)))
			return
		}
		h.logger.Error("get amenity failed", zap.Int64("amenity_id", id), zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, fmt.Sprintf("An error occurred while retrieving villa amenity with ID %d", id), err.Error()))
		return
	}
	respond(c, response.Ok("Record retrieved successfully", amenity))
}

// ensureVilla responde NotFound si la villa referenciada no existe.
func (h *AmenityHandler) ensureVilla(c *gin.Context, villaID int64, failMsg string) bool {
	if _, err := h.villas.GetByID(c.Request.Context(), villaID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond(c, response.NotFound(fmt.Sprintf("Villa with ID %d was not found", villaID)))
			return false
		}
		h.logger.Error("villa lookup failed", zap.Int64("villa_id", villaID), zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, failMsg, err.Error()))
		return false
	}
	return true
}

// Create maneja POST /api/villa-amenities.
func (h *AmenityHandler) Create(c *gin.Context) {
	var req amenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respond(c, response.BadRequest("Villa amenity data is required", nil))
			return
		}
		h.logger.Warn("invalid create amenity request", zap.Error(err))
		respond(c, response.BadRequest("Invalid villa amenity data", bindingErrors(err)))
		return
	}

	const failMsg = "An error occurred while creating villa amenity"
	if !h.ensureVilla(c, req.VillaID, failMsg) {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.amenities.GetByName(ctx, req.VillaID, req.Name); err == nil {
		respond(c, response.Conflict(fmt.Sprintf("An amenity with the name %s already exists for villa %d", req.Name, req.VillaID)))
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		h.logger.Error("amenity name lookup failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, failMsg, err.Error()))
		return
	}

	amenity := domain.VillaAmenity{
		VillaID:     req.VillaID,
		Name:        req.Name,
		Description: req.Description,
		CreatedDate: h.now(),
	}
	if err := h.amenities.Create(ctx, &amenity); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			respond(c, response.Conflict(fmt.Sprintf("An amenity with the name %s already exists for villa %d", req.Name, req.VillaID)))
			return
		}
		h.logger.Error("create amenity failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, failMsg, err.Error()))
		return
	}

	c.Header("Location", fmt.Sprintf("/api/villa-amenities/%d", amenity.ID))
	respond(c, response.CreatedAt("Villa amenity created successfully", amenity))
}

// Update maneja PUT /api/villa-amenities/:id.
func (h *AmenityHandler) Update(c *gin.Context) {
	id := pathID(c)
	var req amenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respond(c, response.BadRequest("Villa amenity data is required", nil))
			return
		}
		h.logger.Warn("invalid update amenity request", zap.Error(err))
		respond(c, response.BadRequest("Invalid villa amenity data", bindingErrors(err)))
		return
	}
	if id <= 0 || req.ID != id {
		respond(c, response.BadRequest("Villa amenity ID in url doesn't match id in request body", nil))
		return
	}

	failMsg := fmt.Sprintf("An error occurred while updating villa amenity with ID %d", id)
	ctx := c.Request.Context()
	existing, err := h.amenities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond(c, response.NotFound(fmt.Sprintf("Villa amenity with ID %d was not found", id)))
			return
		}
		h.logger.Error("get amenity failed", zap.Int64("amenity_id", id), zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, failMsg, err.Error()))
		return
	}
	if !h.ensureVilla(c, req.VillaID, failMsg) {
		return
	}

	if dup, err := h.amenities.GetByName(ctx, req.VillaID, req.Name); err == nil && dup.ID != id {
		respond(c, response.Conflict(fmt.Sprintf("An amenity with the name %s already exists for villa %d", req.Name, req.VillaID)))
		return
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.logger.Error("amenity name lookup failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, failMsg, err.Error()))
		return
	}

	updatedAt := h.now()
	existing.VillaID = req.VillaID
	existing.Name = req.Name
	existing.Description = req.Description
	existing.UpdatedDate = &updatedAt

	if err := h.amenities.Update(ctx, existing); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			respond(c, response.NotFound(fmt.Sprintf("Villa amenity with ID %d was not found", id)))
		case errors.Is(err, repository.ErrDuplicateName):
			respond(c, response.Conflict(fmt.Sprintf("An amenity with the name %s already exists for villa %d", req.Name, req.VillaID)))
		default:
			h.logger.Error("update amenity failed", zap.Int64("amenity_id", id), zap.Error(err))
			respond(c, response.Error(http.StatusInternalServerError, failMsg, err.Error()))
		}
		return
	}

	respond(c, response.Ok("Villa amenity updated successfully", existing))
}

// Delete maneja DELETE /api/villa-amenities/:id.
func (h *AmenityHandler) Delete(c *gin.Context) {
	id := pathID(c)
	if id <= 0 {
		respond(c, response.NotFound("Villa amenity ID must be greater than 0"))
		return
	}
	if err := h.amenities.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond(c, response.NotFound(fmt.Sprintf("Villa amenity with ID %d not found", id)))
			return
		}
		h.logger.Error("delete amenity failed", zap.Int64("amenity_id", id), zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, fmt.Sprintf("An error occurred while deleting villa amenity with ID %d", id), err.Error()))
		return
	}
	respond(c, response.NoContent("Villa amenity deleted successfully"))
}
