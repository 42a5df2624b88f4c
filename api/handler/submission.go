package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/api/transport"
	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/pkg/httpcontext"
	submissionUC "github.com/fastygo/urquest/usecase/submission"
)

type SubmissionHandler struct {
	baseHandler
	uc *submissionUC.UseCase
}

func NewSubmissionHandler(uc *submissionUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Submit proof for a task
// @Tags submissions
// @Router /api/v1/tasks/{id}/submissions [post]
func (h *SubmissionHandler) Submit(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	taskID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.SubmissionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub, err := h.uc.Submit(stdCtx, taskID, userID, req.ProofLink)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, sub)
}

// @Summary Pending submissions of an organization
// @Tags submissions
// @Router /api/v1/orgs/{id}/submissions/pending [get]
func (h *SubmissionHandler) Pending(ctx *fasthttp.RequestCtx) {
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

	seq, err := h.uc.ListPendingFor(stdCtx, userID, orgID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	items, err := collect(seq)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(items))
}

// @Summary Approve or reject a submission
// @Tags submissions
// @Router /api/v1/submissions/{id}/review [post]
func (h *SubmissionHandler) Review(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	submissionID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	var req transport.ReviewRequest
	if !h.decode(ctx, &req) {
		return
	}
	decision, err := domain.ParseDecision(req.Action)
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sub, err := h.uc.ReviewAs(stdCtx, userID, submissionID, decision, req.Feedback)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sub)
}
