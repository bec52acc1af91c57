package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler verifies the configured admin credential and issues session
// cookies. There is no user store in this tier; the single admin identity
// comes from configuration.
type Handler struct {
	JWTSecret         []byte
	AdminEmail        string
	AdminPasswordHash string // bcrypt
}

const jwtExpirationHours = 24

func (h *Handler) configured() bool {
	return h.AdminEmail != "" && h.AdminPasswordHash != ""
}

func (h *Handler) HandleLogin(c echo.Context) error {
	if !h.configured() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Admin login is not configured."})
	}

	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format."})
	}

	if creds.Email != h.AdminEmail {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.AdminPasswordHash), []byte(creds.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	expiration := time.Now().Add(time.Hour * jwtExpirationHours)
	claims := &Claims{
		Email:            creds.Email,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiration)},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create token"})
	}

	c.SetCookie(&http.Cookie{
		Name: "token", Value: tokenString, Expires: expiration, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "Login successful"})
}

func (h *Handler) HandleGetMe(c echo.Context) error {
	user := c.Get("user").(*jwt.Token)
	claims := user.Claims.(*Claims)
	return c.JSON(http.StatusOK, map[string]string{"email": claims.Email})
}

func (h *Handler) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie("token")
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		token, err := jwt.ParseWithClaims(cookie.Value, &Claims{}, func(token *jwt.Token) (any, error) {
			return h.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		c.Set("user", token)
		return next(c)
	}
}
