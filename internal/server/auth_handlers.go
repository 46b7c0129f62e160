// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/login
// @Summary User login
// @Description Authenticate with username and password and receive a session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} object{message=string,user=models.SessionIdentity}
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		middleware.AuthFailures.Inc()
		return respondServiceError(c, err)
	}

	token, err := s.sessions.Create(user)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.setSessionCookie(c, token, s.sessions.TTL())

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user": models.SessionIdentity{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}

// Logout handles POST /api/logout. Destroying an absent or expired session is
// not an error; logout always succeeds.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(sessionCookie); token != "" {
		s.sessions.Destroy(token)
	}
	s.setSessionCookie(c, "", -time.Hour)

	return c.JSON(fiber.Map{
		"message": "Session closed",
	})
}

// CurrentUser handles GET /api/user
func (s *Server) CurrentUser(c *fiber.Ctx) error {
	identity, ok := s.resolveSession(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Not authenticated"))
	}

	return c.JSON(fiber.Map{
		"user": identity,
	})
}

// setSessionCookie writes the session cookie with the attributes the session
// contract requires: HttpOnly, Secure, lifetime bounded by the session TTL.
func (s *Server) setSessionCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
