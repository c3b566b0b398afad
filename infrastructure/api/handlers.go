package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"
	"huddle/infrastructure/ws"
	"huddle/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

type Handler struct {
	service  services.IRoomService
	upgrader *ws.Upgrader
	stats    func() (rooms int, sessions int)
	log      *slog.Logger
}

func NewHandler(service services.IRoomService, upgrader *ws.Upgrader, stats func() (int, int), log *slog.Logger) *Handler {
	return &Handler{service: service, upgrader: upgrader, stats: stats, log: log}
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

type inviteResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Rooms    int    `json:"rooms"`
	Sessions int    `json:"sessions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := h.service.CreateRoom(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: roomID.String()})
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	token, expiresAt, err := h.service.Invite(r.Context(), mux.Vars(r)["roomId"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inviteResponse{Token: token, ExpiresAt: expiresAt.UnixMilli()})
}

// Connect authorizes the request inside the room turn, upgrades it, then pumps frames until the socket ends.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		writeJSON(w, http.StatusUpgradeRequired, errorResponse{Error: "expected websocket upgrade"})
		return
	}
	roomID := mux.Vars(r)["roomId"]
	query := r.URL.Query()
	join := domain.JoinRequest{Token: query.Get("token"), Name: query.Get("name"), Role: query.Get("role")}

	var (
		conn     *ws.Connection
		upgraded bool
	)
	accept := func() (contract.Connection, error) {
		upgraded = true
		c, err := h.upgrader.Upgrade(w, r)
		if err != nil {
			return nil, err
		}
		conn = c
		return c, nil
	}

	ctx := r.Context()
	sessionID, err := h.service.Connect(ctx, roomID, join, accept)
	if err != nil {
		if !upgraded {
			h.writeError(w, err)
		}
		return
	}

	conn.ReadLoop(ctx, func(ctx context.Context, data []byte) error {
		return h.service.Receive(ctx, roomID, sessionID, data)
	})
	if err := h.service.Disconnect(context.WithoutCancel(ctx), roomID, sessionID); err != nil && !stderrors.Is(err, errors.ErrRoomStopped) {
		h.log.Error("Disconnect failed", "room_id", roomID, "session_id", sessionID, "error", err)
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	rooms, sessions := h.stats()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Rooms: rooms, Sessions: sessions})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
}

func StatusOf(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrInvalidRoomID):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrRoomStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
