package echo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	app "github.com/ramindav/outreach-crm/internal/application/contacts"
	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
)

type ContactHandler struct {
	service  *app.Service
	validate *validator.Validate
}

func NewContactHandler(service *app.Service) *ContactHandler {
	return &ContactHandler{
		service:  service,
		validate: validator.New(),
	}
}

type contactRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Role       string `json:"role" validate:"max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=64"`
	LinkedIn   string `json:"linkedin" validate:"omitempty,url"`
	LeadSource string `json:"lead_source" validate:"max=255"`
	Company    string `json:"company" validate:"max=255"`
	City       string `json:"city" validate:"max=255"`
	Industry   string `json:"industry" validate:"max=255"`
}

func (r contactRequest) toInput() app.ContactInput {
	return app.ContactInput{
		Name:       r.Name,
		Role:       r.Role,
		Email:      r.Email,
		Phone:      r.Phone,
		LinkedIn:   r.LinkedIn,
		LeadSource: r.LeadSource,
		Company:    r.Company,
		City:       r.City,
		Industry:   r.Industry,
	}
}

type contactView struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id,omitempty"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	LinkedIn   string `json:"linkedin,omitempty"`
	LeadSource string `json:"lead_source,omitempty"`
	Company    string `json:"company,omitempty"`
	City       string `json:"city,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Sheet      string `json:"sheet,omitempty"`
}

func toContactView(c domain.Contact) contactView {
	view := contactView{
		ID:         c.ID,
		Name:       c.Name,
		Role:       c.Role,
		Email:      c.Email,
		Phone:      c.Phone,
		LinkedIn:   c.LinkedIn,
		LeadSource: c.LeadSource,
		Company:    c.CompanyName,
		City:       c.City,
		Industry:   c.Industry,
		Sheet:      c.Sheet,
	}
	if c.CompanyID != nil {
		view.CompanyID = *c.CompanyID
	}
	return view
}

type listView struct {
	Items  any   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func (h *ContactHandler) bindContact(c echo.Context) (contactRequest, *errorBody) {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return req, &errorBody{Code: "bad_request", Message: "invalid request body"}
	}
	if err := h.validate.Struct(req); err != nil {
		return req, &errorBody{Code: "validation_failed", Message: err.Error()}
	}
	return req, nil
}

func (h *ContactHandler) CreateContact(c echo.Context) error {
	req, bad := h.bindContact(c)
	if bad != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: bad})
	}

	created, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		if errors.Is(err, app.ErrMissingName) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "validation_failed",
				Message: "name is required",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to create contact",
		}})
	}
	return c.JSON(http.StatusCreated, apiResponse{Data: toContactView(created)})
}

func (h *ContactHandler) GetContact(c echo.Context) error {
	contact, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "contact not found",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to get contact",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: toContactView(contact)})
}

func (h *ContactHandler) ListContacts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	contacts, total, err := h.service.List(c.Request().Context(), c.QueryParam("q"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list contacts",
		}})
	}

	views := make([]contactView, 0, len(contacts))
	for _, contact := range contacts {
		views = append(views, toContactView(contact))
	}
	return c.JSON(http.StatusOK, apiResponse{Data: listView{
		Items:  views,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}})
}

func (h *ContactHandler) UpdateContact(c echo.Context) error {
	req, bad := h.bindContact(c)
	if bad != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: bad})
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		if errors.Is(err, app.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "contact not found",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to update contact",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: toContactView(updated)})
}

func (h *ContactHandler) DeleteContact(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, app.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "contact not found",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to delete contact",
		}})
	}
	return c.NoContent(http.StatusNoContent)
}

type companyView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Industry string `json:"industry,omitempty"`
}

func (h *ContactHandler) ListCompanies(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	companies, total, err := h.service.ListCompanies(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list companies",
		}})
	}

	views := make([]companyView, 0, len(companies))
	for _, company := range companies {
		views = append(views, companyView{
			ID:       company.ID,
			Name:     company.Name,
			Domain:   company.Domain,
			Industry: company.Industry,
		})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: listView{
		Items:  views,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}})
}
