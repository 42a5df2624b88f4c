package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/api/transport"
	"github.com/fastygo/urquest/pkg/httpcontext"
	orgUC "github.com/fastygo/urquest/usecase/org"
)

type OrganizationHandler struct {
	baseHandler
	uc *orgUC.UseCase
}

func NewOrganizationHandler(uc *orgUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create organization
// @Tags orgs
// @Router /api/v1/orgs [post]
func (h *OrganizationHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.OrganizationRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	org, err := h.uc.CreateOrganization(stdCtx, userID, req.Name, req.Description, req.ImageURL)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, org)
}

// @Summary Get organization
// @Tags orgs
// @Router /api/v1/orgs/{id} [get]
func (h *OrganizationHandler) Get(ctx *fasthttp.RequestCtx) {
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	org, err := h.uc.GetOrganization(stdCtx, orgID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, org)
}

// @Summary Update organization profile
// @Tags orgs
// @Router /api/v1/orgs/{id} [patch]
func (h *OrganizationHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.OrganizationUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	org, err := h.uc.UpdateOrganization(stdCtx, userID, orgID, req.Description, req.ImageURL)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, org)
}

// @Summary Join organization
// @Tags orgs
// @Router /api/v1/orgs/{id}/join [post]
func (h *OrganizationHandler) Join(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Join(stdCtx, userID, orgID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"user_id": userID, "org_id": orgID})
}

// @Summary Leave organization
// @Tags orgs
// @Router /api/v1/orgs/{id}/leave [post]
func (h *OrganizationHandler) Leave(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.LeaveOrganization(stdCtx, userID, orgID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"user_id": userID})
}

// @Summary Transfer ownership
// @Tags orgs
// @Router /api/v1/orgs/{id}/transfer [post]
func (h *OrganizationHandler) Transfer(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.TransferOwnershipRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.TransferOwnership(stdCtx, userID, orgID, req.NewOwnerID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"org_id": orgID, "owner_id": req.NewOwnerID})
}

// @Summary List members
// @Tags orgs
// @Router /api/v1/orgs/{id}/members [get]
func (h *OrganizationHandler) Members(ctx *fasthttp.RequestCtx) {
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	members, err := h.uc.Members(stdCtx, orgID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(members))
}

// @Summary Organization stats
// @Tags orgs
// @Router /api/v1/orgs/{id}/stats [get]
func (h *OrganizationHandler) Stats(ctx *fasthttp.RequestCtx) {
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx, orgID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}
