package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hexarch/items-api/internal/model"
	"github.com/hexarch/items-api/internal/service"
	"github.com/hexarch/items-api/internal/validation"
	"github.com/labstack/echo/v4"
)

type ItemHandler struct {
	svc service.ItemService
}

func NewItemHandler(svc service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type ItemResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Count int            `json:"count"`
}

type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateItemRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=120"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	IsActive    *bool    `json:"is_active"`
}

// List returns all items, optionally narrowed by the active flag. The
// inactive listing reuses the full query and drops active rows here, since
// the repository only indexes the active side.
func (h *ItemHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var items []model.Item
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("active must be a boolean"))
		}
		if active {
			items, err = h.svc.ListActive(ctx)
			if err != nil {
				return err
			}
		} else {
			all, err := h.svc.List(ctx)
			if err != nil {
				return err
			}
			items = make([]model.Item, 0, len(all))
			for _, item := range all {
				if !item.IsActive {
					items = append(items, item)
				}
			}
		}
	} else {
		var err error
		items, err = h.svc.List(ctx)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, toItemListResponse(items))
}

func (h *ItemHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, itemNotFound(id))
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) Create(c echo.Context) error {
	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse(validation.Message(err)))
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	item, err := h.svc.Create(c.Request().Context(), req.Name, req.Description, req.Price, isActive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toItemResponse(item))
}

func (h *ItemHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse(validation.Message(err)))
	}

	patch := model.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    req.IsActive,
	}
	item, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, itemNotFound(id))
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	deleted, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, itemNotFound(id))
	}
	return c.NoContent(http.StatusNoContent)
}

// Search matches items whose name contains the query substring. The name
// parameter is required but may be empty, in which case every row matches.
func (h *ItemHandler) Search(c echo.Context) error {
	if !c.QueryParams().Has("name") {
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("name query parameter is required"))
	}
	items, err := h.svc.SearchByName(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toItemListResponse(items))
}

// Discount applies a percentage discount to the stored price. The boundary
// here is (0, 100]: a zero discount is a no-op and is rejected, even though
// the entity rule itself tolerates it.
func (h *ItemHandler) Discount(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	raw := c.QueryParam("discount_percent")
	if raw == "" {
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("discount_percent query parameter is required"))
	}
	percent, err := strconv.ParseFloat(raw, 64)
	if err != nil || percent <= 0 || percent > 100 {
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("discount_percent must be greater than 0 and at most 100"))
	}

	item, err := h.svc.ApplyDiscount(c.Request().Context(), id, percent)
	if err != nil {
		return err
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, itemNotFound(id))
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be a positive integer")
	}
	return id, nil
}

func toItemResponse(item *model.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		IsActive:    item.IsActive,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.Format(time.RFC3339),
	}
}

func toItemListResponse(items []model.Item) ItemListResponse {
	resp := ItemListResponse{
		Items: make([]ItemResponse, 0, len(items)),
		Count: len(items),
	}
	for i := range items {
		resp.Items = append(resp.Items, toItemResponse(&items[i]))
	}
	return resp
}
