package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/service"
	appwf "github.com/soglasovach/soglasovach/internal/application/workflow"
	"github.com/soglasovach/soglasovach/internal/auth"
	"github.com/soglasovach/soglasovach/internal/domain/entity"
	domainwf "github.com/soglasovach/soglasovach/internal/domain/workflow"
)

const userContextKey = "current_user"

// Handlers contains all HTTP request handlers
type Handlers struct {
	templateService   service.TemplateService
	engine            appwf.Engine
	attachmentService service.AttachmentService
	userService       service.UserService
	tokens            *auth.TokenManager
	logger            *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	templateService service.TemplateService,
	engine appwf.Engine,
	attachmentService service.AttachmentService,
	userService service.UserService,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		templateService:   templateService,
		engine:            engine,
		attachmentService: attachmentService,
		userService:       userService,
		tokens:            tokens,
		logger:            logger,
	}
}

// AuthMiddleware validates the bearer token and resolves the acting user
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		userID, err := h.tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		user, err := h.userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "unknown user",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *entity.User {
	user, _ := c.MustGet(userContextKey).(*entity.User)
	return user
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respondOK(c, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// --- Auth ---

// RegisterRequest is the payload for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// Register handles POST /auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid registration payload")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, user)
}

// LoginRequest is the payload for POST /auth/token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the issued bearer token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /auth/token
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid login payload")
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	token, err := h.tokens.CreateToken(user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// CurrentUser handles GET /users/me
func (h *Handlers) CurrentUser(c *gin.Context) {
	respondOK(c, currentUser(c))
}

// --- Workflow templates ---

// StepRequest is one step in a template payload
type StepRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Order       int     `json:"order" binding:"min=0"`
	AssigneeID  *string `json:"assignee_id"`
}

// CreateTemplateRequest is the payload for POST /api/workflow_templates
type CreateTemplateRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Steps       []StepRequest `json:"steps"`
}

// CreateTemplate handles POST /api/workflow_templates
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid template payload")
		return
	}

	steps := make([]service.StepInput, 0, len(req.Steps))
	for _, step := range req.Steps {
		steps = append(steps, service.StepInput{
			Name:        step.Name,
			Description: step.Description,
			Order:       step.Order,
			AssigneeID:  step.AssigneeID,
		})
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), req.Name, req.Description, steps)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, template)
}

// ListQuery holds pagination query parameters
type ListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (q *ListQuery) normalize() {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// ListTemplates handles GET /api/workflow_templates
func (h *Handlers) ListTemplates(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "invalid query parameters")
		return
	}
	query.normalize()

	templates, err := h.templateService.ListTemplates(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, templates)
}

// GetTemplate handles GET /api/workflow_templates/:id
func (h *Handlers) GetTemplate(c *gin.Context) {
	template, err := h.templateService.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, template)
}

// AppendStep handles POST /api/workflow_templates/:id/steps
func (h *Handlers) AppendStep(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid step payload")
		return
	}

	step, err := h.templateService.AppendStep(c.Request.Context(), c.Param("id"), service.StepInput{
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, step)
}

// GetStep handles GET /api/workflow_steps/:id
func (h *Handlers) GetStep(c *gin.Context) {
	step, err := h.templateService.GetStep(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, step)
}

// --- Workflow instances ---

// CreateInstanceRequest is the payload for POST /api/workflow_instances
type CreateInstanceRequest struct {
	TemplateID    string   `json:"template_id" binding:"required"`
	AttachmentIDs []string `json:"attachment_ids"`
}

// CreateInstance handles POST /api/workflow_instances
func (h *Handlers) CreateInstance(c *gin.Context) {
	var req CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid instance payload")
		return
	}

	view, err := h.engine.Instantiate(c.Request.Context(), req.TemplateID, currentUser(c).ID, req.AttachmentIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, view)
}

// ListInstances handles GET /api/workflow_instances
func (h *Handlers) ListInstances(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "invalid query parameters")
		return
	}
	query.normalize()

	instances, err := h.engine.ListInstances(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, instances)
}

// GetInstance handles GET /api/workflow_instances/:id
func (h *Handlers) GetInstance(c *gin.Context) {
	view, err := h.engine.GetInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, view)
}

// ActionRequest is the payload for approve/reject calls
type ActionRequest struct {
	Comment string `json:"comment"`
}

// ApproveStep handles POST /api/workflow_instances/:id/approve
func (h *Handlers) ApproveStep(c *gin.Context) {
	h.advance(c, domainwf.ActionApprove)
}

// RejectStep handles POST /api/workflow_instances/:id/reject
func (h *Handlers) RejectStep(c *gin.Context) {
	h.advance(c, domainwf.ActionReject)
}

func (h *Handlers) advance(c *gin.Context, action domainwf.Action) {
	// The comment body is optional: an empty body reads as an empty comment.
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid action payload")
		return
	}

	view, err := h.engine.Advance(c.Request.Context(), c.Param("id"), currentUser(c).ID, action, req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, view)
}

// --- Attachments ---

// UploadAttachment handles POST /api/attachments/upload (multipart form)
func (h *Handlers) UploadAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "missing file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var instanceID *string
	if id := c.PostForm("instance_id"); id != "" {
		instanceID = &id
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachmentService.Upload(
		c.Request.Context(),
		fileHeader.Filename,
		contentType,
		content,
		currentUser(c).ID,
		instanceID,
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCreated(c, attachment)
}

// DownloadAttachment handles GET /api/attachments/:id/download
func (h *Handlers) DownloadAttachment(c *gin.Context) {
	attachment, content, err := h.attachmentService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Data(http.StatusOK, attachment.ContentType, content)
}
