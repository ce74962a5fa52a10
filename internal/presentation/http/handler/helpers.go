package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID extracts the authenticated user ID from the Gin context
func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil
	}
	userID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetShopID extracts the authenticated shop ID from the Gin context.
// Every query below the handler layer is scoped by this value.
func GetShopID(c *gin.Context) uuid.UUID {
	val, exists := c.Get("shop_id")
	if !exists {
		return uuid.Nil
	}
	shopID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return shopID
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) string {
	role, exists := c.Get("user_role")
	if !exists {
		return ""
	}
	return role.(string)
}
