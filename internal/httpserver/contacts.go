package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/service"
)

type ContactHandler struct {
	Contacts *service.ContactService
}

func (h *ContactHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit := intQuery(c, "limit", 10)
	if limit < 10 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	contacts, err := h.Contacts.GetContacts(ctx, currentUser(c), limit, offset)
	if err != nil {
		logging.FromContext(ctx).Error("contacts_list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := contactID(c)
	if err != nil {
		return err
	}
	contact, err := h.Contacts.GetContact(ctx, id, currentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		logging.FromContext(ctx).Error("contact_get_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact_create")

	data, err := bindContact(c)
	if err != nil {
		return err
	}

	contact, err := h.Contacts.CreateContact(ctx, *data, currentUser(c))
	if err != nil {
		l.Error("contact_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	l.Info("contact_created", "contact_id", contact.ID)
	return c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact_update")

	id, err := contactID(c)
	if err != nil {
		return err
	}
	data, err := bindContact(c)
	if err != nil {
		return err
	}

	contact, err := h.Contacts.UpdateContact(ctx, id, *data, currentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("contact_update_missing", "status", 404, "contact_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "contact not found")
		}
		l.Error("contact_update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := contactID(c)
	if err != nil {
		return err
	}
	if err := h.Contacts.RemoveContact(ctx, id, currentUser(c)); err != nil {
		logging.FromContext(ctx).Error("contact_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContactHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	firstName := c.QueryParam("first_name")
	lastName := c.QueryParam("last_name")
	email := c.QueryParam("email")
	if firstName == "" && lastName == "" && email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one search criterion is required")
	}

	contacts, err := h.Contacts.SearchContacts(ctx, currentUser(c), firstName, lastName, email)
	if err != nil {
		logging.FromContext(ctx).Error("contact_search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(contacts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no contacts found")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) UpcomingBirthdays(c echo.Context) error {
	ctx := c.Request().Context()

	days := intQuery(c, "days", 7)
	if days < 1 {
		days = 7
	}

	contacts, err := h.Contacts.GetUpcomingBirthdays(ctx, currentUser(c), days)
	if err != nil {
		logging.FromContext(ctx).Error("birthdays_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(contacts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no upcoming birthdays found")
	}
	return c.JSON(http.StatusOK, contacts)
}

func contactID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
	}
	return uint(id), nil
}

func intQuery(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func bindContact(c echo.Context) (*service.ContactData, error) {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "first_name, last_name, email and phone are required")
	}
	birthday, err := req.ParseBirthday()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "birthday must be in YYYY-MM-DD format")
	}
	return &service.ContactData{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  birthday,
		ExtraInfo: req.ExtraInfo,
	}, nil
}
