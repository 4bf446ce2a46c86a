package middleware

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/platform/config"
	"github.com/jsamuelsen/quotebox/internal/platform/logging"
)

// ContextKeyClaims is the gin context key for the collaborator's claims.
const ContextKeyClaims = "claims"

// Claims identify a collaborator. A fronting gateway authenticates them and
// forwards the result as headers; this service only reads those headers.
type Claims struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the collaborator holds role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// ExtractClaims reads the subject and the comma-separated roles from the
// headers named in cfg.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader, rolesHeader := config.DefaultAuthSubjectHeader, config.DefaultAuthRolesHeader

	if cfg != nil {
		if cfg.SubjectHeader != "" {
			subjectHeader = cfg.SubjectHeader
		}

		if cfg.RolesHeader != "" {
			rolesHeader = cfg.RolesHeader
		}
	}

	claims := &Claims{Subject: strings.TrimSpace(c.GetHeader(subjectHeader))}

	for _, role := range strings.Split(c.GetHeader(rolesHeader), ",") {
		if role = strings.TrimSpace(role); role != "" {
			claims.Roles = append(claims.Roles, role)
		}
	}

	return claims
}

// GetClaims returns the claims stored by RequireRole, or nil.
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}

	return nil
}

// RequireRole guards the collaborator routes. A request without a subject is
// rejected with 401 and one without role with 403.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)

		if claims.Subject == "" {
			dto.AbortWithErrorCode(c, dto.ErrorCodeUnauthorized, "authentication required")
			return
		}

		if !claims.HasRole(role) {
			ctx := c.Request.Context()
			logging.FromContext(ctx).WarnContext(ctx, "admin access denied",
				slog.String("subject", claims.Subject),
				slog.String("path", c.Request.URL.Path),
			)
			dto.AbortWithErrorCode(c, dto.ErrorCodeForbidden, "role "+role+" required")

			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}
