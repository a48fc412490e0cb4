package account

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"appupdate-service/internal/apperror"
	"appupdate-service/internal/captcha"
	"appupdate-service/internal/respond"
)

// Handler exposes the account endpoints: captcha, register, login, refresh
// and current-user info.
type Handler struct {
	svc     *AuthService
	captcha *captcha.Service
	logger  *zap.SugaredLogger
}

func NewHandler(svc *AuthService, c *captcha.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, captcha: c, logger: logger}
}

// CaptchaResponse carries a rendered challenge.
type CaptchaResponse struct {
	CaptchaID    string `json:"captcha_id"`
	CaptchaImage string `json:"captcha_image"`
}

func (h *Handler) GetAuthCaptcha(w http.ResponseWriter, r *http.Request) {
	id, image, err := h.captcha.Issue()
	if err != nil {
		h.logger.Errorw("captcha render failed", "err", err)
		respond.Err(w, apperror.Internal("failed to generate captcha", err))
		return
	}
	respond.OK(w, CaptchaResponse{CaptchaID: id, CaptchaImage: image})
}

// RegisterRequest is the register endpoint body.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	CaptchaID       string `json:"captcha_id"`
	CaptchaCode     string `json:"captcha_code"`
}

// RegisterResponse reports the created account.
type RegisterResponse struct {
	Username   string `json:"username"`
	CreateInfo string `json:"create_info"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	if err := h.svc.Register(r.Context(), req.Username, req.Password, req.ConfirmPassword, req.CaptchaID, req.CaptchaCode); err != nil {
		h.logger.Debugw("register failed", "username", req.Username, "err", err)
		respond.Err(w, err)
		return
	}
	respond.OK(w, RegisterResponse{
		Username:   req.Username,
		CreateInfo: fmt.Sprintf("user '%s' created successfully", req.Username),
	})
}

// LoginRequest is the login endpoint body.
type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// LoginResponse carries the freshly bound token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	LoginInfo    string `json:"login_info"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	pair, err := h.svc.Login(r.Context(), req.Username, req.Password, req.CaptchaID, req.CaptchaCode)
	if err != nil {
		h.logger.Debugw("login failed", "username", req.Username, "err", err)
		respond.Err(w, err)
		return
	}
	respond.OK(w, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		LoginInfo:    fmt.Sprintf("user '%s' logged in successfully", req.Username),
	})
}

// RefreshRequest is the refresh endpoint body.
type RefreshRequest struct {
	AccountID    string `json:"account_id"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	pair, err := h.svc.Refresh(r.Context(), req.AccountID, req.RefreshToken)
	if err != nil {
		h.logger.Debugw("token refresh failed", "account_id", req.AccountID, "err", err)
		respond.Err(w, err)
		return
	}
	respond.OK(w, RefreshResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// InfoResponse is the current-user projection.
type InfoResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	CreateTime time.Time `json:"create_time"`
	IsDelete   bool      `json:"is_delete"`
}

// Info returns the account the authorization middleware resolved.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	a, ok := FromContext(r.Context())
	if !ok {
		respond.Err(w, apperror.Unauthorized("user not found"))
		return
	}
	respond.OK(w, InfoResponse{
		ID:         a.ID,
		Username:   a.Username,
		FullName:   a.FullName,
		CreateTime: a.CreateTime,
		IsDelete:   a.IsDelete,
	})
}
