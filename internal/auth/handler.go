package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"zinc-warehouse/internal/models"
	"zinc-warehouse/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("账号或密码错误")
	errMissingFields      = fiber.NewError(fiber.StatusBadRequest, "请填写所有字段")
	errShortPassword      = fiber.NewError(fiber.StatusBadRequest, "密码至少需要6位")
)

// DuplicateUserError: the username or email is already registered.
type DuplicateUserError struct {
	Field string // "username" or "email"
}

func (e *DuplicateUserError) Error() string {
	if e.Field == "email" {
		return "该邮箱已被注册"
	}
	return "该账号已被注册"
}

var validate = validator.New()

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

// registerError turns validator failures into the messages the login page shows.
func registerError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	for _, ve := range ves {
		if ve.Tag() == "required" {
			return errMissingFields
		}
	}
	return errShortPassword
}

// Register creates a user after checking that username and email are free.
func Register(ctx context.Context, db *gorm.DB, req RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, registerError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	err = store.Transact(ctx, db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &DuplicateUserError{Field: "username"}
		}
		if err := tx.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &DuplicateUserError{Field: "email"}
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent registration; the unique index caught it.
		return nil, duplicateUser(ctx, db, req.Username, req.Email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// duplicateUser reports which unique field clashes after an insert hit a
// unique index. The username wins when both do.
func duplicateUser(ctx context.Context, db *gorm.DB, username, email string) error {
	var count int64
	err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err == nil && count == 0 {
		err = db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
		if err == nil && count > 0 {
			return &DuplicateUserError{Field: "email"}
		}
	}
	return &DuplicateUserError{Field: "username"}
}

func Authenticate(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ResetPassword sets a new password for the user matching both username and email.
func ResetPassword(ctx context.Context, db *gorm.DB, req ResetPasswordRequest) error {
	if utf8.RuneCountInString(req.NewPassword) < minPasswordLen {
		return errShortPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return store.Transact(ctx, db, func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("username = ? AND email = ?", strings.TrimSpace(req.Username), strings.TrimSpace(req.Email)).
			Updates(map[string]any{"password_hash": string(hash), "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "账号或邮箱不匹配")
		}
		return nil
	})
}

// POST /api/register
func RegisterHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "请求格式错误")
		}

		if _, err := Register(c.UserContext(), db, body); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "message": "注册成功"})
	}
}

// POST /api/login
func LoginHandler(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "请求格式错误")
		}

		user, err := Authenticate(c.UserContext(), db, body.Username, body.Password)
		if err != nil {
			return err
		}

		token, err := GenerateToken(secret, user)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "登录成功",
			"user":    toUserResponse(user),
			"token":   token,
		})
	}
}

// POST /api/reset-password
func ResetPasswordHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "请求格式错误")
		}

		if err := ResetPassword(c.UserContext(), db, body); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true, "message": "密码重置成功"})
	}
}
