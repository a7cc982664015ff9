package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stockroom/internal/auth"
	"stockroom/internal/domain"
	"stockroom/internal/exporter"
	"stockroom/internal/repository"
	"stockroom/internal/service"
	"stockroom/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	items   service.ItemService
	jobs    repository.ExportJobRepository
	exports exporter.Manager
	issuer  *auth.Issuer
	storage storage.Service
	bucket  string
	logger  *logrus.Logger
	dbPing  func() error
}

type Options struct {
	Users      service.UserService
	Items      service.ItemService
	ExportJobs repository.ExportJobRepository
	Exports    exporter.Manager
	Issuer     *auth.Issuer
	Storage    storage.Service
	Bucket     string
	Logger     *logrus.Logger
	DBPing     func() error
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &Handler{
		users:   opts.Users,
		items:   opts.Items,
		jobs:    opts.ExportJobs,
		exports: opts.Exports,
		issuer:  opts.Issuer,
		storage: opts.Storage,
		bucket:  opts.Bucket,
		logger:  opts.Logger,
		dbPing:  opts.DBPing,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/health", h.health)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", h.authRequired(), h.me)
	}

	users := api.Group("/users", h.authRequired(), h.adminRequired())
	{
		users.GET("", h.listUsers)
		users.DELETE("/:id", h.deleteUser)
	}

	inventory := api.Group("/inventory", h.authRequired())
	{
		inventory.GET("", h.listItems)
		inventory.POST("", h.createItem)
		inventory.GET("/stats/summary", h.itemStats)

		exports := inventory.Group("/exports", h.adminRequired())
		{
			exports.POST("", h.createExport)
			exports.GET("", h.listExports)
			exports.GET("/:id", h.getExport)
			exports.GET("/:id/download", h.downloadExport)
		}

		inventory.GET("/:id", h.getItem)
		inventory.PUT("/:id", h.updateItem)
		inventory.DELETE("/:id", h.deleteItem)
	}
}

func (h *Handler) health(c *gin.Context) {
	dbStatus := "connected"
	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			dbStatus = "disconnected"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbStatus,
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ValidationError("invalid request body"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userToResponse(user),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ValidationError("invalid request body"))
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userToResponse(user),
	})
}

func (h *Handler) me(c *gin.Context) {
	ident := identityFrom(c)

	user, err := h.users.GetByID(c.Request.Context(), ident.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToResponse(user)})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, domain.ValidationError("invalid user id"))
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
