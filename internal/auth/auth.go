// Package auth resolves bearer tokens issued by Casdoor into users.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserKey holds the *models.User of the request.
	ContextUserKey = "user"
	// ContextUserIDKey holds the user id string, read by request logging.
	ContextUserIDKey = "user_id"

	teacherTag  = "teacher"
	teacherRole = "teacher"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenVerifier turns an access token into the user it was issued to.
type TokenVerifier interface {
	Verify(token string) (*models.User, error)
}

type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg CasdoorConfig) *CasdoorVerifier {
	return &CasdoorVerifier{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.OrganizationName,
			cfg.ApplicationName,
		),
	}
}

func (v *CasdoorVerifier) Verify(token string) (*models.User, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return UserFromCasdoor(&claims.User), nil
}

// UserFromCasdoor maps a Casdoor account onto a classroom user. Admins are
// admins, accounts tagged or given the teacher role are teachers and
// everyone else is a student.
func UserFromCasdoor(u *casdoorsdk.User) *models.User {
	user := &models.User{
		ID:       u.Id,
		FullName: u.DisplayName,
		Email:    u.Email,
		Role:     models.RoleStudent,
	}
	if user.ID == "" {
		user.ID = u.Owner + "/" + u.Name
	}
	if user.FullName == "" {
		user.FullName = u.Name
	}

	switch {
	case u.IsAdmin:
		user.Role = models.RoleAdmin
	case strings.EqualFold(u.Tag, teacherTag):
		user.Role = models.RoleTeacher
	default:
		for _, role := range u.Roles {
			if role != nil && strings.EqualFold(role.Name, teacherRole) {
				user.Role = models.RoleTeacher
				break
			}
		}
	}
	return user
}

// Middleware rejects requests without a valid token and stores the user in
// the gin context. The token may also come from the access_token query
// parameter because browsers cannot set headers on EventSource streams.
func Middleware(verifier TokenVerifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err == nil {
			var user *models.User
			user, err = verifier.Verify(token)
			if err == nil {
				c.Set(ContextUserKey, user)
				c.Set(ContextUserIDKey, user.ID)
				c.Next()
				return
			}
		}

		logger.Warn("Rejected unauthenticated request",
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
	}
}

// CurrentUser returns the authenticated user of the request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}
	if token := c.Query("access_token"); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}
