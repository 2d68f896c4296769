package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"techpals/models"
	"techpals/utils"
)

// Blog listings are fixed at five posts per page, newest first.
const postsPerPage = 5

type BlogController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewBlogController(db *gorm.DB, logger *log.Logger) *BlogController {
	return &BlogController{DB: db, Logger: logger}
}

// ListPosts is public, paginated newest-published first.
func (bc *BlogController) ListPosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	var total int64
	if err := bc.DB.Model(&models.Post{}).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list posts", err)
	}

	var posts []models.Post
	err := bc.DB.Preload("Author").Preload("Category").
		Order("published_date desc").
		Limit(postsPerPage).
		Offset((page - 1) * postsPerPage).
		Find(&posts).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list posts", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"posts": posts,
		"page":  page,
		"total": total,
	}))
}

// GetPost is the public detail view, addressed by slug.
func (bc *BlogController) GetPost(c *fiber.Ctx) error {
	var post models.Post
	err := bc.DB.Preload("Author").Preload("Category").
		Where("slug = ?", c.Params("slug")).
		First(&post).Error
	if err != nil {
		return utils.NotFoundResponse(c, "Post")
	}
	return c.JSON(utils.SuccessResponse(post))
}

// ListPostsByCategory is the public category view, same pagination.
func (bc *BlogController) ListPostsByCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := bc.DB.Where("slug = ?", c.Params("slug")).First(&category).Error; err != nil {
		return utils.NotFoundResponse(c, "Category")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	var posts []models.Post
	err := bc.DB.Preload("Author").
		Where("category_id = ?", category.ID).
		Order("published_date desc").
		Limit(postsPerPage).
		Offset((page - 1) * postsPerPage).
		Find(&posts).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list posts", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"category": category,
		"posts":    posts,
		"page":     page,
	}))
}

// CreatePost requires authentication; the author is the caller. Slug and
// excerpt are derived once here when absent and never recomputed.
func (bc *BlogController) CreatePost(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title      string `json:"title" form:"title" validate:"required,max=200"`
		Slug       string `json:"slug" form:"slug"`
		Content    string `json:"content" form:"content" validate:"required"`
		Excerpt    string `json:"excerpt" form:"excerpt"`
		CategoryID *uint  `json:"category_id" form:"category_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	if input.CategoryID != nil {
		var category models.Category
		if err := bc.DB.First(&category, *input.CategoryID).Error; err != nil {
			return utils.NotFoundResponse(c, "Category")
		}
	}

	postSlug := input.Slug
	if postSlug == "" {
		var err error
		postSlug, err = utils.UniqueSlug(bc.DB, &models.Post{}, input.Title)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to derive slug", err)
		}
	}

	excerpt := input.Excerpt
	if excerpt == "" {
		excerpt = utils.Excerpt(input.Content)
	}

	post := models.Post{
		Title:      input.Title,
		Slug:       postSlug,
		AuthorID:   user.ID,
		CategoryID: input.CategoryID,
		Content:    input.Content,
		Excerpt:    excerpt,
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		path, err := utils.SaveUpload(c, file, "blog_images")
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store image", err)
		}
		post.Image = path
	}

	if err := bc.DB.Create(&post).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return utils.ValidationErrorResponse(c, "Slug already in use", input)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create post", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(post))
}

// CreateCategory is admin-only; the slug is derived from the name when
// absent.
func (bc *BlogController) CreateCategory(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name" form:"name" validate:"required,max=100"`
		Slug string `json:"slug" form:"slug"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationErrorResponse(c, err.Error(), input)
	}

	categorySlug := input.Slug
	if categorySlug == "" {
		var err error
		categorySlug, err = utils.UniqueSlug(bc.DB, &models.Category{}, input.Name)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to derive slug", err)
		}
	}

	category := models.Category{Name: input.Name, Slug: categorySlug}
	if err := bc.DB.Create(&category).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return utils.ValidationErrorResponse(c, "Category name or slug already in use", input)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create category", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(category))
}
