package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"royal-villa/internal/domain"
	"royal-villa/internal/repository"
	"royal-villa/internal/response"
)

// VillaHandler expone el CRUD de villas.
type VillaHandler struct {
	logger *zap.Logger
	villas repository.VillaRepository
	now    func() time.Time
}

func NewVillaHandler(logger *zap.Logger, villas repository.VillaRepository) *VillaHandler {
	return &VillaHandler{
		logger: logger,
		villas: villas,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type villaRequest struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name" binding:"required,max=50"`
	Details   string  `json:"details"`
	Rate      float64 `json:"rate" binding:"gte=0"`
	Sqft      int     `json:"sqft" binding:"gte=0"`
	Occupancy int     `json:"occupancy" binding:"gte=0"`
	ImageURL  string  `json:"imageUrl" binding:"omitempty,url"`
}

// pathID devuelve 0 cuando el parametro no es un entero.
func pathID(c *gin.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// List maneja GET /api/villa.
func (h *VillaHandler) List(c *gin.Context) {
	villas, err := h.villas.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list villas failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, "An error occurred while retrieving villas", err.Error()))
		return
	}
	if villas == nil {
		villas = []domain.Villa{}
	}
	respond(c, response.Ok("Villas retrieved successfully", villas))
}

// Get maneja GET /api/villa/:id.
func (h *VillaHandler) Get(c *gin.Context) {
	id := pathID(c)
	if id <= 0 {
		respond(c, response.NotFound("Villa ID must be greater than 0"))
		return
	}
	villa, err := h.villas.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond(c, response.NotFound(fmt.Sprintf("Villa with ID %d was not found", id)))
			return
		}
		h.logger.Error("get villa failed", zap.Int64("villa_id", id), zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, fmt.Sprintf("An error occurred while retrieving villa with ID %d", id), err.Error()))
		return
	}
	respond(c, response.Ok("Record retrieved successfully", villa))
}

// Create maneja POST /api/villa.
func (h *VillaHandler) Create(c *gin.Context) {
	var req villaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respond(c, response.BadRequest("Villa data is required", nil))
			return
		}
		h.logger.Warn("invalid create villa request", zap.Error(err))
		respond(c, response.BadRequest("Invalid villa data", bindingErrors(err)))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.villas.GetByName(ctx, req.Name); err == nil {
		respond(c, response.Conflict(fmt.Sprintf("A villa with the name %s already exists", req.Name)))
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		h.logger.Error("villa name lookup failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, "An error occurred while creating villa", err.Error()))
		return
	}

	villa := domain.Villa{
		Name:        req.Name,
		Details:     req.Details,
		Rate:        req.Rate,
		Sqft:        req.Sqft,
		Occupancy:   req.Occupancy,
		ImageURL:    req.ImageURL,
		CreatedDate: h.now(),
	}
	if err := h.villas.Create(ctx, &villa); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			respond(c, response.Conflict(fmt.Sprintf("A villa with the name %s already exists", req.Name)))
			return
		}
		h.logger.Error("create villa failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, "An error occurred while creating villa", err.Error()))
		return
	}

	c.Header("Location", fmt.Sprintf("/api/villa/%d", villa.ID))
	respond(c, response.CreatedAt("Villa created successfully", villa))
}

// Update maneja PUT /api/villa/:id.
func (h *VillaHandler) Update(c *gin.Context) {
	id := pathID(c)
	var req villaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respond(c, response.BadRequest("Villa data is required", nil))
			return
		}
		h.logger.Warn("invalid update villa request", zap.Error(err))
		respond(c, response.BadRequest("Invalid villa data", bindingErrors(err)))
		return
	}
	if id <= 0 || req.ID != id {
		respond(c, response.BadRequest("Villa ID in url doesn't match villa id in request body", nil))
		return
	}

	ctx := c.Request.Context()
	existing, err := h.villas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond(c, response.NotFound(fmt.Sprintf("Villa with ID %d was not found", id)))
			return
		}
		h.logger.Error("get villa failed", zap.Int64("villa_id", id), zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, fmt.Sprintf("An error occurred while updating villa with ID %d", id), err.Error()))
		return
	}

	if dup, err := h.villas.GetByName(ctx, req.Name); err == nil && dup.ID != id {
		respond(c, response.Conflict(fmt.Sprintf("A villa with the name %s already exists", req.Name)))
		return
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		h.logger.Error("villa name lookup failed", zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, fmt.Sprintf("An error occurred while updating villa with ID %d", id), err.Error()))
		return
	}

	updatedAt := h.now()
	existing.Name = req.Name
	existing.Details = req.Details
	existing.Rate = req.Rate
	existing.Sqft = req.Sqft
	existing.Occupancy = req.Occupancy
	existing.ImageURL = req.ImageURL
	existing.UpdatedDate = &updatedAt

	if err := h.villas.Update(ctx, existing); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			respond(c, response.NotFound(fmt.Sprintf("Villa with ID %d was not found", id)))
		case errors.Is(err, repository.ErrDuplicateName):
			respond(c, response.Conflict(fmt.Sprintf("A villa with the name %s already exists", req.Name)))
		default:
			h.logger.Error("update villa failed", zap.Int64("villa_id", id), zap.Error(err))
			respond(c, response.Error(http.StatusInternalServerError, fmt.Sprintf("An error occurred while updating villa with ID %d", id), err.Error()))
		}
		return
	}

	respond(c, response.Ok("Villa updated successfully", existing))
}

// Delete maneja DELETE /api/villa/:id.
func (h *VillaHandler) Delete(c *gin.Context) {
	id := pathID(c)
	if id <= 0 {
		respond(c, response.NotFound("Villa ID must be greater than 0"))
		return
	}
	if err := h.villas.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond(c, response.NotFound(fmt.Sprintf("Villa with ID %d not found", id)))
			return
		}
		h.logger.Error("delete villa failed", zap.Int64("villa_id", id), zap.Error(err))
		respond(c, response.Error(http.StatusInternalServerError, fmt.Sprintf("An error occurred while deleting villa with ID %d", id), err.Error()))
		return
	}
	respond(c, response.NoContent("Villa deleted successfully"))
}
