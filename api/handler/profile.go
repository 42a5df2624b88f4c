package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/api/transport"
	"github.com/fastygo/urquest/pkg/httpcontext"
	profileUC "github.com/fastygo/urquest/usecase/profile"
)

type ProfileHandler struct {
	baseHandler
	uc *profileUC.UseCase
}

func NewProfileHandler(uc *profileUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get own profile
// @Tags profile
// @Success 200 {object} transport.Envelope
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	h.profile(ctx, userID)
}

// @Summary Get a user's profile
// @Tags profile
// @Router /api/v1/users/{id}/profile [get]
func (h *ProfileHandler) GetUserProfile(ctx *fasthttp.RequestCtx) {
	userID, _ := ctx.UserValue("id").(string)
	if userID == "" {
		h.respondInvalid(ctx, "invalid id")
		return
	}
	h.profile(ctx, userID)
}

func (h *ProfileHandler) profile(ctx *fasthttp.RequestCtx, userID string) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.Profile(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profile)
}

// @Summary Leaderboard
// @Tags profile
// @Router /api/v1/leaderboard [get]
func (h *ProfileHandler) Leaderboard(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.Leaderboard(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(entries))
}
