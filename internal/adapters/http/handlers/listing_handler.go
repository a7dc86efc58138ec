package handlers

import (
	"atw-marketplace/internal/adapters/http/middleware"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/core/services"
	"atw-marketplace/internal/pkg/pagination"
	"atw-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ListingHandler handles property and car endpoints
type ListingHandler struct {
	listingService *services.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func actorOf(c *fiber.Ctx) services.Actor {
	return services.Actor{UserID: middleware.CurrentUserID(c), Role: middleware.CurrentRole(c)}
}

func listingFilter(c *fiber.Ctx) repositories.ListingFilter {
	return repositories.ListingFilter{
		City:         c.Query("city"),
		Status:       domain.ListingStatus(c.Query("status")),
		PropertyType: domain.PropertyType(c.Query("type")),
		Make:         c.Query("make"),
		Condition:    domain.CarCondition(c.Query("condition")),
		MinPrice:     c.QueryFloat("minPrice"),
		MaxPrice:     c.QueryFloat("maxPrice"),
	}
}

// ListProperties lists properties
// @Summary List properties
// @Tags Properties
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param city query string false "City"
// @Param type query string false "Property type"
// @Param status query string false "Listing status"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Success 200 {object} response.Response
// @Router /properties [get]
func (h *ListingHandler) ListProperties(c *fiber.Ctx) error {
	filter := listingFilter(c)
	filter.Make, filter.Condition = "", ""

	result, err := h.listingService.ListProperties(c.UserContext(), filter, pagination.GetParams(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "properties retrieved", result)
}

// GetProperty returns one property
// @Summary Get property
// @Tags Properties
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [get]
func (h *ListingHandler) GetProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	p, err := h.listingService.GetProperty(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "property retrieved", p)
}

// CreateProperty creates a property (Agent or Admin)
// @Summary Create property
// @Tags Properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.PropertyInput true "Property"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /properties [post]
func (h *ListingHandler) CreateProperty(c *fiber.Ctx) error {
	var req services.PropertyInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	p, err := h.listingService.CreateProperty(c.UserContext(), actorOf(c), req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "property created", p)
}

// UpdateProperty partially updates a property (owner or Admin)
// @Summary Update property
// @Tags Properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Property ID"
// @Param body body services.PropertyInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [patch]
func (h *ListingHandler) UpdateProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var req services.PropertyInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	p, err := h.listingService.UpdateProperty(c.UserContext(), actorOf(c), id, req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "property updated", p)
}

// DeleteProperty deletes a property (owner or Admin)
// @Summary Delete property
// @Tags Properties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Property ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [delete]
func (h *ListingHandler) DeleteProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	if err := h.listingService.DeleteProperty(c.UserContext(), actorOf(c), id); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "property deleted", nil)
}

// ListCars lists cars
// @Summary List cars
// @Tags Cars
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param make query string false "Make"
// @Param condition query string false "Condition"
// @Param status query string false "Listing status"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Success 200 {object} response.Response
// @Router /cars [get]
func (h *ListingHandler) ListCars(c *fiber.Ctx) error {
	filter := listingFilter(c)
	filter.City, filter.PropertyType = "", ""

	result, err := h.listingService.ListCars(c.UserContext(), filter, pagination.GetParams(c))
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "cars retrieved", result)
}

// GetCar returns one car
// @Summary Get car
// @Tags Cars
// @Produce json
// @Param id path int true "Car ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cars/{id} [get]
func (h *ListingHandler) GetCar(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	car, err := h.listingService.GetCar(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "car retrieved", car)
}

// CreateCar creates a car (Agent or Admin)
// @Summary Create car
// @Tags Cars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CarInput true "Car"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /cars [post]
func (h *ListingHandler) CreateCar(c *fiber.Ctx) error {
	var req services.CarInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	car, err := h.listingService.CreateCar(c.UserContext(), actorOf(c), req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Created(c, "car created", car)
}

// UpdateCar partially updates a car (owner or Admin)
// @Summary Update car
// @Tags Cars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Car ID"
// @Param body body services.CarInput true "Fields to change"
// @Success 200 {object} response.Response
// @Router /cars/{id} [patch]
func (h *ListingHandler) UpdateCar(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	var req services.CarInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	car, err := h.listingService.UpdateCar(c.UserContext(), actorOf(c), id, req)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "car updated", car)
}

// DeleteCar deletes a car (owner or Admin)
// @Summary Delete car
// @Tags Cars
// @Security BearerAuth
// @Param id path int true "Car ID"
// @Success 200 {object} response.Response
// @Router /cars/{id} [delete]
func (h *ListingHandler) DeleteCar(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}
	if err := h.listingService.DeleteCar(c.UserContext(), actorOf(c), id); err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "car deleted", nil)
}
