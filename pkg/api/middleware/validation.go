package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ValidatorConfig holds validation configuration
type ValidatorConfig struct {
	MaxBodySize      int64    // Maximum request body size in bytes
	CommandBlacklist []string // Dangerous command patterns
	MaxNameLength    int      // Maximum service name length
	MaxCommandLength int      // Maximum command length
}

// DefaultValidatorConfig returns safe defaults
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MaxBodySize:      1 << 20, // 1MB
		CommandBlacklist: []string{"rm -rf /", ":(){ :|:& };:", "mkfs", "dd if="},
		MaxNameLength:    256,
		MaxCommandLength: 4096,
	}
}

var serviceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Validator performs request validation
type Validator struct {
	config           ValidatorConfig
	dangerousPattern *regexp.Regexp
}

// NewValidator creates a new validator with the given config
func NewValidator(config ValidatorConfig) *Validator {
	patterns := make([]string, len(config.CommandBlacklist))
	for i, p := range config.CommandBlacklist {
		patterns[i] = regexp.QuoteMeta(p)
	}
	pattern := regexp.MustCompile(strings.Join(patterns, "|"))

	return &Validator{
		config:           config,
		dangerousPattern: pattern,
	}
}

// ValidateCommand checks if a command is safe to execute
func (v *Validator) ValidateCommand(command string) error {
	if len(command) == 0 {
		return &ValidationError{
			Field:   "command",
			Message: "command is required",
		}
	}

	if len(command) > v.config.MaxCommandLength {
		return &ValidationError{
			Field:   "command",
			Message: "command exceeds maximum length",
		}
	}

	if v.dangerousPattern.MatchString(command) {
		return &ValidationError{
			Field:   "command",
			Message: "command contains potentially dangerous patterns",
		}
	}

	return nil
}

// ValidateServiceName checks a service name
func (v *Validator) ValidateServiceName(name string) error {
	if len(name) == 0 {
		return &ValidationError{
			Field:   "service",
			Message: "service is required",
		}
	}
	if len(name) > v.config.MaxNameLength {
		return &ValidationError{
			Field:   "service",
			Message: "service exceeds maximum length",
		}
	}
	if !serviceNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "service",
			Message: "service contains invalid characters",
		}
	}
	return nil
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// BodySizeLimitMiddleware limits request body size
func BodySizeLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "request body too large",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	}
}

// RequestIDMiddleware adds request ID for tracing
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = "req-" + uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
