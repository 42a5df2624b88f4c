package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/api/transport"
	"github.com/fastygo/urquest/pkg/httpcontext"
	orgUC "github.com/fastygo/urquest/usecase/org"
)

type RoleHandler struct {
	baseHandler
	uc *orgUC.UseCase
}

func NewRoleHandler(uc *orgUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

func roleInput(req transport.RoleRequest) orgUC.RoleInput {
	return orgUC.RoleInput{Name: req.Name, Rank: req.Rank, CanCreateTask: req.CanCreateTask}
}

// @Summary Create role
// @Tags roles
// @Router /api/v1/orgs/{id}/roles [post]
func (h *RoleHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.RoleRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	role, err := h.uc.CreateRole(stdCtx, userID, orgID, roleInput(req))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, role)
}

// @Summary List roles
// @Tags roles
// @Router /api/v1/orgs/{id}/roles [get]
func (h *RoleHandler) List(ctx *fasthttp.RequestCtx) {
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	roles, err := h.uc.ListRoles(stdCtx, orgID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(roles))
}

// @Summary Update role
// @Tags roles
// @Router /api/v1/roles/{id} [put]
func (h *RoleHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	roleID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.RoleRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	role, err := h.uc.UpdateRole(stdCtx, userID, roleID, roleInput(req))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, role)
}

// @Summary Delete role
// @Tags roles
// @Router /api/v1/roles/{id} [delete]
func (h *RoleHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	roleID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteRole(stdCtx, userID, roleID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"role_id": roleID})
}

// @Summary Assign or clear a member's role
// @Tags roles
// @Router /api/v1/orgs/{id}/roles/assign [post]
func (h *RoleHandler) Assign(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.AssignRoleRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.UserID == "" {
		h.respondInvalid(ctx, "user_id is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.AssignRole(stdCtx, userID, orgID, req.UserID, req.RoleID); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"user_id": req.UserID, "role_id": req.RoleID})
}
