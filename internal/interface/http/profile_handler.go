package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/application"
	"github.com/oksasatya/rockae-api/internal/domain/apperror"
)

// MaxAvatarSize bounds avatar uploads.
const MaxAvatarSize = 5 << 20

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type ProfileHandler struct {
	Profiles *application.ProfileService
	Logger   logrus.FieldLogger
}

func NewProfileHandler(profiles *application.ProfileService, logger logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Logger: logger}
}

type updateProfileRequest struct {
	Firstname   *string `json:"firstname" binding:"omitempty,max=100"`
	Lastname    *string `json:"lastname" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth"`
	Bio         *string `json:"bio" binding:"omitempty,max=2000"`
}

// GetProfile GET /api/user/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	v, err := h.Profiles.Get(c.Request.Context(), id.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// UpdateProfile PUT /api/user/profile applies the fields present in the body.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if !bindJSON(c, &req, "Invalid profile data") {
		return
	}
	v, err := h.Profiles.Update(c.Request.Context(), id.UserID, application.ProfilePatch{
		Firstname:   req.Firstname,
		Lastname:    req.Lastname,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Bio:         req.Bio,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// UploadAvatar POST /api/user/profile/avatar (multipart field "avatar")
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAvatarSize+1<<10)
	fh, err := c.FormFile("avatar")
	if err != nil {
		_ = c.Error(apperror.Validation("Invalid avatar upload", map[string]string{"avatar": "No file was submitted."}))
		return
	}
	if fh.Size > MaxAvatarSize {
		_ = c.Error(apperror.Validation("Invalid avatar upload", map[string]string{"avatar": "File is larger than 5 MB."}))
		return
	}
	contentType := strings.ToLower(fh.Header.Get("Content-Type"))
	ext, allowed := avatarTypes[contentType]
	if !allowed {
		_ = c.Error(apperror.Validation("Invalid avatar upload", map[string]string{"avatar": "Upload a valid image. Allowed types: jpeg, png, webp, gif."}))
		return
	}
	if e := strings.ToLower(filepath.Ext(fh.Filename)); e != "" {
		ext = e
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	v, err := h.Profiles.UploadAvatar(c.Request.Context(), id.UserID, "avatar"+ext, contentType, f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, v)
}
