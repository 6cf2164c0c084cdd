package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
	"github.com/ahmedsamir-dev/netcafes/internal/pkg/usercontext"
)

// BrandController serves the brand listing resource.
type BrandController struct {
	repos *repository.Repositories
}

// NewBrandController creates a brand controller with injected repositories.
func NewBrandController(repos *repository.Repositories) *BrandController {
	return &BrandController{repos: repos}
}

type brandRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
	Website     string `json:"website"`
	IsActive    *bool  `json:"is_active"`
}

// HandleList returns a page of brands, optionally filtered by a search term
// matching name or description.
func (bc *BrandController) HandleList(c *fiber.Ctx) error {
	page, pageSize, offset := parsePagination(c)
	query := c.Query("q", "")

	var (
		brands []models.Brand
		total  int64
		err    error
	)
	if query != "" {
		brands, total, err = bc.repos.Brand.Search(query, offset, pageSize)
	} else {
		if total, err = bc.repos.Brand.Count(); err == nil {
			brands, err = bc.repos.Brand.List(offset, pageSize)
		}
	}
	if err != nil {
		return handleInternalError(c, "failed to list brands", err)
	}

	return c.JSON(fiber.Map{
		"brands":      brands,
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": totalPages(total, pageSize),
	})
}

// HandleDetail returns a single brand by its public identifier.
func (bc *BrandController) HandleDetail(c *fiber.Ctx) error {
	brand, err := bc.repos.Brand.GetByUUID(c.Params("uuid"))
	if err != nil {
		if resp, ok := handleNotFound(c, err); ok {
			return resp
		}
		return handleInternalError(c, "failed to load brand", err)
	}
	return c.JSON(brand)
}

// HandleCreate creates a brand. Admin only (enforced by the router).
func (bc *BrandController) HandleCreate(c *fiber.Ctx) error {
	var req brandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	brand := &models.Brand{
		Name:            req.Name,
		Description:     req.Description,
		LogoURL:         req.LogoURL,
		Website:         req.Website,
		IsActive:        true,
		CreatedByUserID: usercontext.GetUserID(c),
	}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}

	if err := brand.Validate(); err != nil {
		if resp, ok := handleValidationError(c, err); ok {
			return resp
		}
		return handleInternalError(c, "brand validation failed", err)
	}

	if err := bc.repos.Brand.Create(brand); err != nil {
		return handleInternalError(c, "failed to create brand", err)
	}

	return c.Status(fiber.StatusCreated).JSON(brand)
}

// HandleUpdate updates an existing brand. Admin only.
func (bc *BrandController) HandleUpdate(c *fiber.Ctx) error {
	brand, err := bc.repos.Brand.GetByUUID(c.Params("uuid"))
	if err != nil {
		if resp, ok := handleNotFound(c, err); ok {
			return resp
		}
		return handleInternalError(c, "failed to load brand", err)
	}

	var req brandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	brand.Name = req.Name
	brand.Description = req.Description
	brand.LogoURL = req.LogoURL
	brand.Website = req.Website
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}
	brand.UpdatedByUserID = usercontext.GetUserID(c)

	if err := brand.Validate(); err != nil {
		if resp, ok := handleValidationError(c, err); ok {
			return resp
		}
		return handleInternalError(c, "brand validation failed", err)
	}

	if err := bc.repos.Brand.Update(brand); err != nil {
		return handleInternalError(c, "failed to update brand", err)
	}

	return c.JSON(brand)
}

// HandleDelete soft deletes a brand. Admin only.
func (bc *BrandController) HandleDelete(c *fiber.Ctx) error {
	brand, err := bc.repos.Brand.GetByUUID(c.Params("uuid"))
	if err != nil {
		if resp, ok := handleNotFound(c, err); ok {
			return resp
		}
		return handleInternalError(c, "failed to load brand", err)
	}

	brand.UpdatedByUserID = usercontext.GetUserID(c)
	if err := bc.repos.Brand.Update(brand); err != nil {
		return handleInternalError(c, "failed to update brand", err)
	}
	if err := bc.repos.Brand.Delete(brand.ID); err != nil {
		return handleInternalError(c, "failed to delete brand", err)
	}

	return c.JSON(fiber.Map{"message": "brand deleted"})
}
