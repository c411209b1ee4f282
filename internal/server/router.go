package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmx-joss/carbontrack/internal/auth"
	"github.com/rmx-joss/carbontrack/internal/config"
	"github.com/rmx-joss/carbontrack/internal/documents"
	"github.com/rmx-joss/carbontrack/internal/records"
	"github.com/rmx-joss/carbontrack/internal/solar"
)

const (
	emailContextKey = "carbontrack_email"
	roleContextKey  = "carbontrack_role"
)

var (
	errMissingCache     = errors.New("record cache dependency required")
	errMissingDocuments = errors.New("document store dependency required")
	errMissingDirectory = errors.New("credential directory dependency required")
	errMissingTokens    = errors.New("token manager dependency required")
)

// Dependencies wires the HTTP surface to the core services.
type Dependencies struct {
	Cache     *records.Cache
	Documents *documents.Store
	Logs      *documents.GormLogStore
	Solar     *solar.Service
	Directory *auth.Directory
	Tokens    *auth.TokenManager
	Config    config.AppConfig
	Logger    *zap.Logger
}

// NewHTTPHandler builds the gin router over the supplied dependencies. The
// solar and document-log dependencies are optional; their routes fall back
// or are skipped when absent.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Cache == nil {
		return nil, errMissingCache
	}
	if deps.Documents == nil {
		return nil, errMissingDocuments
	}
	if deps.Directory == nil {
		return nil, errMissingDirectory
	}
	if deps.Tokens == nil {
		return nil, errMissingTokens
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		cache:     deps.Cache,
		documents: deps.Documents,
		logs:      deps.Logs,
		solar:     deps.Solar,
		directory: deps.Directory,
		tokens:    deps.Tokens,
		config:    deps.Config,
		logger:    logger,
	}

	router.POST("/api/auth/login", handler.handleLogin)

	protected := router.Group("/api")
	protected.Use(handler.authorizeRequest)
	protected.POST("/entries", handler.handleSubmitEntries)
	protected.GET("/records", handler.handleListRecords)
	protected.PUT("/records/:id", handler.handleUpdateRecord)
	protected.DELETE("/records/:id", handler.handleDeleteRecord)
	protected.GET("/records/export", handler.handleExportRecords)
	protected.GET("/dashboard", handler.handleDashboard)
	protected.POST("/documents", handler.handleUploadDocument)
	protected.GET("/documents", handler.handleListDocuments)
	if deps.Solar != nil {
		protected.POST("/solar", handler.handleCreateSolarEntry)
		protected.GET("/solar", handler.handleListSolarEntries)
		protected.DELETE("/solar/:id", handler.handleDeleteSolarEntry)
	}

	return router, nil
}

type httpHandler struct {
	cache     *records.Cache
	documents *documents.Store
	logs      *documents.GormLogStore
	solar     *solar.Service
	directory *auth.Directory
	tokens    *auth.TokenManager
	config    config.AppConfig
	logger    *zap.Logger
}

type loginRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	role, err := h.directory.Authenticate(request.Email, request.Password)
	if err != nil {
		h.logger.Warn("login rejected", zap.String("email", request.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	token, expiresIn, err := h.tokens.Issue(request.Email, role)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
		Role:        role,
	})
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	email, _, err := h.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// The role claim is informational for clients; the session role is
	// re-derived from the directory so a stale token never carries a
	// revoked role forward.
	c.Set(emailContextKey, email)
	c.Set(roleContextKey, h.directory.RoleOf(email))
	c.Next()
}

func (h *httpHandler) sessionIdentity(c *gin.Context) (string, string) {
	email, _ := c.Get(emailContextKey)
	role, _ := c.Get(roleContextKey)
	emailValue, _ := email.(string)
	roleValue, _ := role.(string)
	return emailValue, roleValue
}
