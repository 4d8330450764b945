package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/service"
)

type UserHandler struct {
	Users *service.UserService
	Auth  *service.AuthService
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Users.GetUserByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, user)
}

// ConfirmEmail flips the confirmed flag for the address baked into the
// mailed token. Re-confirming is harmless.
func (h *UserHandler) ConfirmEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "confirm_email")

	email, err := h.Auth.EmailFromConfirmationToken(c.Param("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "verification error")
	}

	user, err := h.Users.GetUserByEmail(ctx, email)
	if err != nil {
		l.Error("confirm_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "verification error")
	}
	if user.Confirmed {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Your email has already been confirmed"})
	}

	if err := h.Users.ConfirmEmail(ctx, email); err != nil {
		l.Error("confirm_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Email confirmed"})
}

// RequestEmail re-sends the confirmation mail. The response does not
// reveal whether the address is registered.
func (h *UserHandler) RequestEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "request_email")

	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		l.Error("request_email_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if user != nil && user.Confirmed {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Your email has already been confirmed"})
	}
	if user != nil {
		host := c.Scheme() + "://" + c.Request().Host + "/"
		h.Auth.SendConfirmation(ctx, user, host)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for confirmation"})
}

func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_avatar")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer file.Close()

	user, err := h.Users.UpdateAvatar(ctx, currentUser(c), file)
	if err != nil {
		l.Error("avatar_update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Moderator(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, MessageResponse{
		Message: "Hello, " + user.Username + "! This is the route for moderators and administrators",
	})
}

func (h *UserHandler) Admin(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, MessageResponse{
		Message: "Hello, " + user.Username + "! This is the route for administrators",
	})
}
