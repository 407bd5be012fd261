package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"gatekeeper/internal/domain/staff"
)

const staffContextKey = "staff"

// StaffClaims are the claims of a staff access token. The subject is the staff id.
type StaffClaims struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	OrganizationID string `json:"organization_id"`
	jwt.RegisteredClaims
}

func (c StaffClaims) Staff() staff.Staff {
	return staff.Staff{
		ID:             c.Subject,
		Email:          c.Email,
		DisplayName:    c.Name,
		OrganizationID: c.OrganizationID,
	}
}

var errMissingToken = errors.New("missing bearer token")

func StaffAuthMiddleware(signingKey SigningKeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := staffFromRequest(c.Request(), signingKey)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Message: err.Error()})
			}

			c.Set(staffContextKey, principal)
			return next(c)
		}
	}
}

func staffFromRequest(r *http.Request, signingKey SigningKeyFunc) (staff.Staff, error) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return staff.Staff{}, errMissingToken
	}

	key, err := signingKey()
	if err != nil {
		return staff.Staff{}, fmt.Errorf("signing key unavailable: %w", err)
	}

	var claims StaffClaims
	_, err = jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return staff.Staff{}, fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject == "" {
		return staff.Staff{}, errors.New("token has no subject")
	}

	return claims.Staff(), nil
}

func staffFromContext(c echo.Context) staff.Staff {
	s, _ := c.Get(staffContextKey).(staff.Staff)
	return s
}
