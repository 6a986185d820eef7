package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/credit-service/internal/api/dto"
	"github.com/spec-kit/credit-service/internal/api/validation"
	"github.com/spec-kit/credit-service/internal/auth"
	"github.com/spec-kit/credit-service/internal/domain"
	"github.com/spec-kit/credit-service/internal/service"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

const uploadField = "file"

// UsersHandler exposes account endpoints for card holders.
type UsersHandler struct {
	auth      *service.AuthService
	users     *service.UserService
	validator *validation.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService, validator *validation.Validator) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService, validator: validator}
}

// AccessToken handles POST /auth/access_token.
func (h *UsersHandler) AccessToken(c *fiber.Ctx) error {
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid form payload", nil)
	}
	if form.Username == "" || form.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	token, err := h.auth.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenResponse(token))
}

// Register handles POST /user/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	req, err := h.validator.Registration(c.Body())
	if err != nil {
		return err
	}
	if _, err := h.auth.Register(c.UserContext(), req.Email, req.Password); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.MessageResponse{Detail: "success"}})
}

// Me handles GET /user.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PATCH /user.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	patch, err := h.validator.ProfilePatch(c.Body())
	if err != nil {
		return err
	}
	if err := h.users.UpdateProfile(c.UserContext(), user, patch); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Document handles POST /user/document.
func (h *UsersHandler) Document(c *fiber.Ctx) error {
	return h.verify(c, domain.PhotoKindDocument)
}

// Face handles POST /user/face.
func (h *UsersHandler) Face(c *fiber.Ctx) error {
	return h.verify(c, domain.PhotoKindFace)
}

func (h *UsersHandler) verify(c *fiber.Ctx, kind domain.PhotoKind) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	photo, err := readPhoto(c)
	if err != nil {
		return err
	}

	ok, err := h.users.Verify(c.UserContext(), user, photo, kind)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotValidated()
	}
	return c.JSON(fiber.Map{"data": dto.MessageResponse{Detail: "validated"}})
}

func readPhoto(c *fiber.Ctx) (domain.Photo, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return domain.Photo{}, apperrors.NewValidationError("multipart field \"file\" is required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return domain.Photo{}, apperrors.NewValidationError("uploaded file is unreadable", nil)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return domain.Photo{}, apperrors.NewValidationError("uploaded file is unreadable", nil)
	}
	return domain.Photo{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}
