package middleware

import (
	"strings"

	"haulgo/internal/models"
	"haulgo/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthRequired validates the bearer token and sets the acting identity on
// the request context.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(tokenString, jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("account_type", claims.AccountType)

		c.Next()
	}
}

// GetActor reads the authenticated identity previously set by AuthRequired.
func GetActor(c *gin.Context) (models.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return models.Actor{}, false
	}
	accountType, exists := c.Get("account_type")
	if !exists {
		return models.Actor{}, false
	}

	id, ok := userID.(primitive.ObjectID)
	if !ok {
		return models.Actor{}, false
	}
	role, ok := accountType.(models.AccountType)
	if !ok {
		return models.Actor{}, false
	}

	return models.Actor{UserID: id, Role: role}, true
}

// RequireRoles gates a route to the listed account types.
func RequireRoles(roles ...models.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c)
		c.Abort()
	}
}

func DriverRequired() gin.HandlerFunc {
	return RequireRoles(models.AccountTypeDriver)
}

func CompanyRequired() gin.HandlerFunc {
	return RequireRoles(models.AccountTypeCompany, models.AccountTypeAdmin)
}
