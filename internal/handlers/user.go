package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"creatorsmeet/internal/models"
	"creatorsmeet/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProfileImageDir is where profile images live, relative to the public directory
const ProfileImageDir = "images/profiles"

// Sniffed types accepted as profile images
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UserHandler handles profile endpoints
type UserHandler struct {
	users        UserStore
	publicDir    string
	maxImageSize int64
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserStore, publicDir string, maxImageSizeMB int) *UserHandler {
	if maxImageSizeMB <= 0 {
		maxImageSizeMB = 5
	}
	return &UserHandler{
		users:        users,
		publicDir:    publicDir,
		maxImageSize: int64(maxImageSizeMB) * 1024 * 1024,
	}
}

// UploadProfileImage stores a new profile image for the caller
// POST /api/user/profile-image
func (h *UserHandler) UploadProfileImage(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No image provided")
	}
	if fileHeader.Size > h.maxImageSize {
		log.Printf("⚠️  [UPLOAD] Image too large: %d bytes (max %d)", fileHeader.Size, h.maxImageSize)
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("Image too large. Maximum size is %d MB", h.maxImageSize/(1024*1024)))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return internalError(c, "upload_profile_image", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil {
		return internalError(c, "upload_profile_image", err)
	}

	// Trust the bytes, not the client's Content-Type header
	mimeType := http.DetectContentType(data)
	if _, ok := allowedImageTypes[mimeType]; !ok {
		log.Printf("⚠️  [UPLOAD] Rejected non-image upload (detected as: %s)", mimeType)
		return errorJSON(c, fiber.StatusBadRequest, "File must be a PNG, JPEG, GIF or WebP image")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return internalError(c, "upload_profile_image", err)
	}

	filename := fmt.Sprintf("%s-%d-%s", userID.Hex(), time.Now().UnixMilli(), sanitizeFilename(fileHeader.Filename, mimeType))
	dir := filepath.Join(h.publicDir, filepath.FromSlash(ProfileImageDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return internalError(c, "upload_profile_image", err)
	}

	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return internalError(c, "upload_profile_image", err)
	}

	imageURL := "/" + ProfileImageDir + "/" + filename
	if err := h.users.UpdateProfileImage(ctx, userID, imageURL); err != nil {
		_ = os.Remove(fullPath)
		if errors.Is(err, services.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return internalError(c, "upload_profile_image", err)
	}

	log.Printf("🖼️  [UPLOAD] Profile image saved for %s: %s (%d bytes)", userID.Hex(), filename, len(data))

	return c.JSON(fiber.Map{
		"message":  "Profile image updated",
		"imageUrl": imageURL,
	})
}

// UpdateProfile edits the caller's name, bio and skills
// PUT /api/user/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.UpdateProfile(ctx, userID, &req)
	if errors.Is(err, services.ErrUserNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return internalError(c, "update_profile", err)
	}

	return c.JSON(fiber.Map{"user": user.ToResponse()})
}

// sanitizeFilename reduces a client-supplied name to a safe base name.
// Names with nothing usable left get a random one.
func sanitizeFilename(name, mimeType string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	clean := strings.TrimLeft(b.String(), ".")
	if len(clean) > 100 {
		clean = clean[len(clean)-100:]
	}
	if strings.TrimSuffix(clean, filepath.Ext(clean)) == "" {
		clean = uuid.NewString()[:8] + allowedImageTypes[mimeType]
	}
	return clean
}
