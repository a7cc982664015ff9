package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/domain"
)

// statusFor is the single mapping from the error taxonomy to HTTP
// status codes. Duplicate registrations answer 400 (not 409) to match
// the API contract clients already depend on.
var statusFor = map[domain.ErrorKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindConflict:       http.StatusBadRequest,
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindAuthorization:  http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
}

func (h *Handler) writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, ok := statusFor[kind]
	if !ok {
		h.logger.WithField("path", c.FullPath()).Errorf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

type ItemResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Quantity      int64   `json:"quantity"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	SKU           string  `json:"sku"`
	Supplier      string  `json:"supplier"`
	Location      string  `json:"location"`
	MinStockLevel int64   `json:"min_stock_level"`
	LowStock      bool    `json:"low_stock"`
	CreatedBy     string  `json:"created_by"`
	UpdatedBy     string  `json:"updated_by"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func itemToResponse(item domain.Item) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		Quantity:      item.Quantity,
		Price:         item.Price,
		Category:      item.Category,
		SKU:           item.SKU,
		Supplier:      item.Supplier,
		Location:      item.Location,
		MinStockLevel: item.MinStockLevel,
		LowStock:      item.LowStock(),
		CreatedBy:     item.CreatedByName,
		UpdatedBy:     item.UpdatedByName,
		CreatedAt:     item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.Format(time.RFC3339),
	}
}

type StatsResponse struct {
	TotalItems    int64   `json:"totalItems"`
	LowStockItems int64   `json:"lowStockItems"`
	TotalValue    float64 `json:"totalValue"`
	Categories    int64   `json:"categories"`
}

type ExportJobResponse struct {
	ID           int64   `json:"id"`
	Status       string  `json:"status"`
	Category     string  `json:"category,omitempty"`
	Search       string  `json:"search,omitempty"`
	LowStock     bool    `json:"low_stock"`
	Location     string  `json:"location,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	CompletedAt  *string `json:"completed_at,omitempty"`
}

func exportJobToResponse(job domain.ExportJob) ExportJobResponse {
	resp := ExportJobResponse{
		ID:           job.ID,
		Status:       string(job.Status),
		Category:     job.Filter.Category,
		Search:       job.Filter.Search,
		LowStock:     job.Filter.LowStock,
		Location:     job.Location,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    job.UpdatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		v := job.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}
