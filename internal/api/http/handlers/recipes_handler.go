package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cook-api/internal/api/dto"
	"github.com/spec-kit/cook-api/internal/auth"
	"github.com/spec-kit/cook-api/internal/service"
	apperrors "github.com/spec-kit/cook-api/pkg/util/errorutil"
)

// RecipesHandler manages recipe endpoints.
type RecipesHandler struct {
	service *service.RecipeService
}

// NewRecipesHandler constructs handler.
func NewRecipesHandler(recipeService *service.RecipeService) *RecipesHandler {
	return &RecipesHandler{service: recipeService}
}

// List GET /api/recipe.
func (h *RecipesHandler) List(c *fiber.Ctx) error {
	recipes, err := h.service.List(c.UserContext(), c.QueryInt("page", 0), c.QueryInt("size", 0))
	if err != nil {
		return err
	}
	items := make([]dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		items = append(items, dto.NewRecipeResponse(&recipes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/recipe/:id.
func (h *RecipesHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRecipeResponse(recipe)})
}

// Create POST /api/recipe.
func (h *RecipesHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	recipe, err := h.service.Create(c.UserContext(), principal, recipeInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRecipeResponse(recipe)})
}

// Update PUT /api/recipe/:id.
func (h *RecipesHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	recipe, err := h.service.Update(c.UserContext(), principal, id, recipeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRecipeResponse(recipe)})
}

// Delete DELETE /api/recipe/:id.
func (h *RecipesHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func recipeInput(req dto.RecipeRequest) service.RecipeInput {
	return service.RecipeInput{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Calories:    req.Calories,
		Ingredients: req.Ingredients,
	}
}
