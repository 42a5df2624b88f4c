package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/api/transport"
	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/pkg/httpcontext"
	taskUC "github.com/fastygo/urquest/usecase/task"
)

const dateLayout = "2006-01-02"

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List open tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) ListOpen(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := collect(h.uc.ListOpenTasks(stdCtx))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(tasks))
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(ctx *fasthttp.RequestCtx) {
	taskID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, taskID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/orgs/{id}/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orgID, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}

	task, ok := h.parseTask(ctx, orgID)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, userID, task)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx, orgID int64) (*domain.Task, bool) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return nil, false
	}

	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return nil, false
	}

	task := &domain.Task{
		OrgID:       orgID,
		Title:       req.Title,
		Description: req.Description,
		XPReward:    req.XPReward,
		Difficulty:  difficulty,
	}
	if deadline := strings.TrimSpace(req.Deadline); deadline != "" {
		parsed, err := time.Parse(dateLayout, deadline)
		if err != nil {
			h.respondInvalid(ctx, "deadline must be YYYY-MM-DD")
			return nil, false
		}
		task.Deadline = &parsed
	}
	return task, true
}
