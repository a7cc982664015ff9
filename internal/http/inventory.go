package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/domain"
	"stockroom/internal/service"
)

type itemRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Quantity      int64   `json:"quantity"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	SKU           string  `json:"sku"`
	Supplier      string  `json:"supplier"`
	Location      string  `json:"location"`
	MinStockLevel *int64  `json:"min_stock_level"`
}

func (r itemRequest) toInput() service.ItemInput {
	return service.ItemInput{
		Name:          r.Name,
		Description:   r.Description,
		Quantity:      r.Quantity,
		Price:         r.Price,
		Category:      r.Category,
		SKU:           r.SKU,
		Supplier:      r.Supplier,
		Location:      r.Location,
		MinStockLevel: r.MinStockLevel,
	}
}

func (h *Handler) actorFrom(c *gin.Context) service.Actor {
	ident := identityFrom(c)
	return service.Actor{UserID: ident.UserID}
}

func filterFromQuery(c *gin.Context) domain.ItemFilter {
	return domain.ItemFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		LowStock: c.Query("low_stock") == "true" || c.Query("lowStock") == "true",
	}
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.items.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ItemResponse, len(items))
	for i := range items {
		resp[i] = itemToResponse(items[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, domain.ValidationError("invalid item id"))
		return
	}

	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(*item))
}

func (h *Handler) createItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ValidationError("invalid request body"))
		return
	}

	item, err := h.items.Create(c.Request.Context(), req.toInput(), h.actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemToResponse(*item))
}

func (h *Handler) updateItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, domain.ValidationError("invalid item id"))
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ValidationError("invalid request body"))
		return
	}

	item, err := h.items.Update(c.Request.Context(), id, req.toInput(), h.actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(*item))
}

func (h *Handler) deleteItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, domain.ValidationError("invalid item id"))
		return
	}

	item, err := h.items.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "item deleted successfully",
		"item":    itemToResponse(*item),
	})
}

func (h *Handler) itemStats(c *gin.Context) {
	stats, err := h.items.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{
		TotalItems:    stats.TotalItems,
		LowStockItems: stats.LowStockItems,
		TotalValue:    stats.TotalValue,
		Categories:    stats.Categories,
	})
}

func (h *Handler) createExport(c *gin.Context) {
	if h.exports == nil {
		h.writeError(c, domain.ValidationError("export storage not configured"))
		return
	}

	job := &domain.ExportJob{
		Status:      domain.ExportStatusPending,
		Filter:      filterFromQuery(c),
		RequestedBy: identityFrom(c).UserID,
	}
	if _, err := h.jobs.Create(c.Request.Context(), job); err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.exports.Enqueue(c.Request.Context(), job.ID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, exportJobToResponse(*job))
}

func (h *Handler) listExports(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ExportJobResponse, len(jobs))
	for i := range jobs {
		resp[i] = exportJobToResponse(jobs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getExport(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, domain.ValidationError("invalid export id"))
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, exportJobToResponse(*job))
}

func (h *Handler) downloadExport(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		h.writeError(c, domain.ValidationError("export storage not configured"))
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, domain.ValidationError("invalid export id"))
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if job.Status != domain.ExportStatusCompleted {
		h.writeError(c, domain.ValidationError("export is not completed"))
		return
	}

	key, err := extractObjectKey(job.Location, h.bucket)
	if err != nil {
		h.writeError(c, err)
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, key, 15*time.Minute)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func extractObjectKey(location, bucket string) (string, error) {
	if !strings.HasPrefix(location, "s3://") {
		return "", fmt.Errorf("invalid storage location")
	}
	rest := strings.TrimPrefix(location, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid storage location")
	}
	if bucket != "" && parts[0] != bucket {
		return "", fmt.Errorf("storage bucket mismatch")
	}
	return strings.TrimPrefix(parts[1], "/"), nil
}
