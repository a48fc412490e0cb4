package channel

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"appupdate-service/internal/account"
	"appupdate-service/internal/apperror"
	"appupdate-service/internal/respond"
)

// Handler exposes the channel CRUD endpoints. All of them run behind the
// authorization middleware, which resolves the owning account.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest is the create endpoint body.
type CreateRequest struct {
	ChannelName string `json:"channel_name"`
}

// CreateResponse reports the created channel.
type CreateResponse struct {
	ChannelName string `json:"channel_name"`
	CreateInfo  string `json:"create_info"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := account.FromContext(r.Context())
	if !ok {
		respond.Err(w, apperror.Unauthorized("user not found"))
		return
	}
	var req CreateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), a.ID, req.ChannelName)
	if err != nil {
		h.logger.Debugw("channel create failed", "owner", a.ID, "err", err)
		respond.Err(w, err)
		return
	}
	respond.OK(w, CreateResponse{
		ChannelName: c.ChannelName,
		CreateInfo:  fmt.Sprintf("channel '%s' created successfully", c.ChannelName),
	})
}

// ListItem is one row of the list endpoint response.
type ListItem struct {
	ChannelID   uuid.UUID `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	CreateTime  time.Time `json:"create_time"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := account.FromContext(r.Context())
	if !ok {
		respond.Err(w, apperror.Unauthorized("user not found"))
		return
	}
	rows, err := h.svc.List(r.Context(), a.ID)
	if err != nil {
		h.logger.Warnw("channel list failed", "owner", a.ID, "err", err)
		respond.Err(w, err)
		return
	}
	items := make([]ListItem, 0, len(rows))
	for _, c := range rows {
		items = append(items, ListItem{ChannelID: c.ID, ChannelName: c.ChannelName, CreateTime: c.CreateTime})
	}
	respond.OK(w, items)
}

// UpdateRequest is the update endpoint body.
type UpdateRequest struct {
	ChannelID   uuid.UUID `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
}

// UpdateResponse reports the renamed channel.
type UpdateResponse struct {
	ID          uuid.UUID `json:"id"`
	ChannelName string    `json:"channel_name"`
	UpdateInfo  string    `json:"update_info"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	if err := h.svc.Rename(r.Context(), req.ChannelID, req.ChannelName); err != nil {
		h.logger.Debugw("channel update failed", "channel_id", req.ChannelID, "err", err)
		respond.Err(w, err)
		return
	}
	respond.OK(w, UpdateResponse{
		ID:          req.ChannelID,
		ChannelName: req.ChannelName,
		UpdateInfo:  "channel updated successfully",
	})
}

// DeleteRequest is the body of both delete endpoints.
type DeleteRequest struct {
	ChannelID uuid.UUID `json:"channel_id"`
}

// DeleteResponse reports the removed channel.
type DeleteResponse struct {
	ID         uuid.UUID `json:"id"`
	DeleteInfo string    `json:"delete_info"`
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), req.ChannelID); err != nil {
		h.logger.Debugw("channel delete failed", "channel_id", req.ChannelID, "err", err)
		respond.Err(w, err)
		return
	}
	respond.OK(w, DeleteResponse{ID: req.ChannelID, DeleteInfo: "channel deleted successfully"})
}

// PurgeDelete permanently removes the channel row.
func (h *Handler) PurgeDelete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Err(w, err)
		return
	}
	if err := h.svc.Purge(r.Context(), req.ChannelID); err != nil {
		h.logger.Debugw("channel purge failed", "channel_id", req.ChannelID, "err", err)
		respond.Err(w, err)
		return
	}
	respond.OK(w, DeleteResponse{ID: req.ChannelID, DeleteInfo: "channel permanently deleted"})
}
