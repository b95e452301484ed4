package middleware

import (
	"net/http"
	"strings"

	"github.com/annel0/mmo-collision/internal/auth"
	"github.com/gin-gonic/gin"
)

// OperatorKey: ключ claims оператора в gin.Context
const OperatorKey = "operator"

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// OperatorAuth проверяет JWT токен в заголовке Authorization
func OperatorAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Отсутствует токен авторизации")
			return
		}

		// Проверяем формат "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "Неверный формат токена")
			return
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "Недействительный токен")
			return
		}

		c.Set(OperatorKey, claims)
		c.Next()
	}
}

// RequireEdit пропускает только операторов с правом правки карты.
// Ставится после OperatorAuth.
func RequireEdit() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(OperatorKey)
		if !exists {
			abort(c, http.StatusInternalServerError, "Отсутствует информация об операторе")
			return
		}

		if claims, ok := value.(*auth.Claims); !ok || !claims.CanEdit {
			abort(c, http.StatusForbidden, "Недостаточно прав доступа")
			return
		}
		c.Next()
	}
}
