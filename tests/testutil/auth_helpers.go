package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/amara-atelier/atelier-orders-api/middleware"
)

// MockValidatedClaims builds the ValidatedClaims the token middleware would
// produce for the given subject, without validating a real JWT.
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// SetMockAuthContext stamps a gin context the way EnsureValidToken does after
// a successful validation: user_id plus the validated claims. Suites use it in
// place of the real middleware so requests carry an atelier identity without
// Auth0 round-trips.
func SetMockAuthContext(c *gin.Context, userID string, issuer string, scopes []string) {
	claims := MockValidatedClaims(userID, issuer, scopes)
	c.Set("user_id", userID)
	c.Set("validated_claims", claims)
}
