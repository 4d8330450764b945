package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/service"
)

type AuthHandler struct {
	Auth  *service.AuthService
	Reset *service.PasswordResetService
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and a password of at least 6 characters are required")
	}

	host := c.Scheme() + "://" + c.Request().Host + "/"
	user, err := h.Auth.Register(ctx, service.RegisterData{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, host)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			l.Warn("register_failed", "status", 409, "reason", "duplicate")
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		}
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, err := h.Auth.Authenticate(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotConfirmed):
			return echo.NewHTTPError(http.StatusUnauthorized, "email address is not confirmed")
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password")
		default:
			l.Error("login_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	accessToken, err := h.Auth.IssueAccessToken(user.Username)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}
	refreshToken, err := h.Auth.IssueRefreshToken(ctx, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// Refresh exchanges a refresh token for a new pair; the spent token is
// revoked so a second exchange fails.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Auth.ValidateRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			l.Warn("refresh_failed", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	accessToken, err := h.Auth.IssueAccessToken(user.Username)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}
	refreshToken, err := h.Auth.IssueRefreshToken(ctx, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	if err := h.Auth.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot revoke old token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// Logout revokes the presented access token and the refresh token from the
// body. Requires a valid bearer token.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Auth.RevokeAccessToken(ctx, currentToken(c)); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot revoke access token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if req.RefreshToken != "" {
		if err := h.Auth.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	l.Info("logout_successful")
	return c.NoContent(http.StatusNoContent)
}

// RequestPasswordReset always answers with the same message so account
// existence cannot be probed.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "password_reset_request")

	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Reset.RequestReset(ctx, req.Email); err != nil {
		l.Error("reset_request_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "If a user with that email exists, password reset instructions have been sent",
	})
}

func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "password_reset_confirm")

	var req PasswordResetConfirm
	if err := c.Bind(&req); err != nil || req.Token == "" || len(req.NewPassword) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "token and a password of at least 6 characters are required")
	}

	if err := h.Reset.ConfirmReset(ctx, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenUsed):
			return echo.NewHTTPError(http.StatusBadRequest, "token has already been used")
		case errors.Is(err, service.ErrResetTokenInvalid):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
		default:
			l.Error("reset_confirm_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}
