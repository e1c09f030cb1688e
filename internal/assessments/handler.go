package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coverage-backend/internal/assessment"
	"coverage-backend/internal/reports"
	"coverage-backend/internal/shared/server/middleware"
	"coverage-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the assessments service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/questions", h.listQuestions)
	rg.POST("/assessments", h.createAssessment)
	rg.GET("/assessments", h.listAssessments)
	rg.GET("/assessments/:id", h.getAssessment)
	rg.POST("/assessments/:id/answers", h.submitAnswer)
	rg.POST("/assessments/:id/back", h.goBack)
	rg.POST("/assessments/:id/reset", h.reset)
	rg.GET("/assessments/:id/recommendations", h.getRecommendations)
	rg.GET("/assessments/:id/report", h.getReport)
}

type answerRequest struct {
	Value json.RawMessage `json:"value"`
}

func (h *Handler) listQuestions(c *gin.Context) {
	questions := h.Svc.Questions()
	respond.OK(c, gin.H{
		"questions": questions,
		"total":     len(questions),
	})
}

func (h *Handler) createAssessment(c *gin.Context) {
	a, err := h.Svc.Create(h.ctx(c), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start assessment", nil)
		return
	}
	c.Set(middleware.AssessmentIDKey, a.ID)
	respond.Created(c, toView(h.Svc.catalog(), a))
}

func (h *Handler) listAssessments(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}

	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	items, err := h.Svc.List(h.ctx(c), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assessments", nil)
		return
	}
	resp := make([]assessmentSummary, 0, len(items))
	for _, a := range items {
		resp = append(resp, toSummary(h.Svc.catalog(), a))
	}
	respond.OK(c, resp)
}

func (h *Handler) getAssessment(c *gin.Context) {
	id := h.assessmentID(c)
	a, err := h.Svc.Get(h.ctx(c), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to fetch assessment")
		return
	}
	respond.OK(c, toView(h.Svc.catalog(), a))
}

func (h *Handler) submitAnswer(c *gin.Context) {
	id := h.assessmentID(c)

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "request body must be JSON", nil)
		return
	}
	if len(req.Value) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "value is required", []map[string]string{
			{"field": "value", "issue": "required"},
		})
		return
	}
	value, err := assessment.ParseAnswerValue(req.Value)
	if err != nil {
		h.fail(c, err, "failed to record answer")
		return
	}

	a, transition, err := h.Svc.Answer(h.ctx(c), middleware.UserIDFromContext(c), id, value)
	if err != nil {
		h.fail(c, err, "failed to record answer")
		return
	}
	if transition != "" {
		c.Set(middleware.StatusTransitionKey, transition)
	}
	respond.OK(c, toView(h.Svc.catalog(), a))
}

func (h *Handler) goBack(c *gin.Context) {
	id := h.assessmentID(c)
	a, err := h.Svc.Back(h.ctx(c), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to go back")
		return
	}
	respond.OK(c, toView(h.Svc.catalog(), a))
}

func (h *Handler) reset(c *gin.Context) {
	id := h.assessmentID(c)
	a, transition, err := h.Svc.Reset(h.ctx(c), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to reset assessment")
		return
	}
	if transition != "" {
		c.Set(middleware.StatusTransitionKey, transition)
	}
	respond.OK(c, toView(h.Svc.catalog(), a))
}

func (h *Handler) getRecommendations(c *gin.Context) {
	id := h.assessmentID(c)
	recs, err := h.Svc.Recommendations(h.ctx(c), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to evaluate recommendations")
		return
	}
	respond.OK(c, toResults(id, recs))
}

func (h *Handler) getReport(c *gin.Context) {
	id := h.assessmentID(c)
	rc, err := h.Svc.OpenReport(h.ctx(c), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to open report")
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, reports.ContentType(), rc, nil)
}

func (h *Handler) assessmentID(c *gin.Context) string {
	id := c.Param("id")
	c.Set(middleware.AssessmentIDKey, id)
	return id
}

func (h *Handler) ctx(c *gin.Context) context.Context {
	return WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "assessment not found", nil)
	case errors.Is(err, assessment.ErrInvalidAnswer):
		respond.Error(c, http.StatusBadRequest, "invalid_answer", err.Error(), nil)
	case errors.Is(err, assessment.ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
	case errors.Is(err, ErrNotCompleted):
		respond.Error(c, http.StatusConflict, "not_completed", "assessment is not completed", nil)
	case errors.Is(err, ErrReportNotReady):
		respond.Error(c, http.StatusNotFound, "report_not_ready", "report has not been generated yet", nil)
	case errors.Is(err, ErrCorrupt):
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	case errors.Is(err, assessment.ErrInvalidState):
		respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
