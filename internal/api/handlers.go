package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/guardline/report-verifier/internal/credibility"
	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/escalation"
	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/processor"
	"github.com/guardline/report-verifier/internal/verification"
)

// ReportSaver persists incoming reports before verification runs.
type ReportSaver interface {
	Save(ctx context.Context, report *domain.Report) error
}

// Handler handles HTTP requests for the verifier API.
type Handler struct {
	verifier   *verification.Service
	escalator  *escalation.Service
	classifier verification.Classifier
	ledger     *credibility.Ledger
	reports    ReportSaver
	batch      *processor.BatchProcessor
	log        logger.Logger
}

func NewHandler(
	verifier *verification.Service,
	escalator *escalation.Service,
	cls verification.Classifier,
	ledger *credibility.Ledger,
	reports ReportSaver,
	batch *processor.BatchProcessor,
	log logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		verifier:   verifier,
		escalator:  escalator,
		classifier: cls,
		ledger:     ledger,
		reports:    reports,
		batch:      batch,
		log:        log,
	}
}

// VerifyRequest is an incoming report submission.
type VerifyRequest struct {
	ID               string `json:"id"`
	Text             string `json:"description"        binding:"required"`
	Location         string `json:"location"`
	TimeOfOccurrence string `json:"time_of_occurrence"`
	ReporterID       string `json:"reporter_id"        binding:"required"`
	Channel          string `json:"channel"`
}

func (r *VerifyRequest) toReport() *domain.Report {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	channel := r.Channel
	if channel == "" {
		channel = domain.ChannelCitizen
	}
	now := time.Now().UTC()
	return &domain.Report{
		ID:               id,
		Text:             r.Text,
		Location:         r.Location,
		TimeOfOccurrence: r.TimeOfOccurrence,
		ReporterID:       r.ReporterID,
		Channel:          channel,
		Status:           domain.StatusPending,
		SubmittedAt:      &now,
	}
}

// VerifyResponse wraps the verification outcome together with the report id
// assigned to the submission.
type VerifyResponse struct {
	ReportID string                `json:"report_id"`
	Outcome  *verification.Outcome `json:"outcome"`
}

// Verify handles POST /api/v1/verify.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid verify request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := req.toReport()
	if h.reports != nil {
		if err := h.reports.Save(c.Request.Context(), report); err != nil {
			h.log.Error("report persist failed",
				logger.String("report_id", report.ID),
				logger.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store report"})
			return
		}
	}

	outcome, err := h.verifier.VerifyReport(c.Request.Context(), report)
	if errors.Is(err, credibility.ErrReporterBlocked) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":       "reporter is blocked",
			"reporter_id": report.ReporterID,
		})
		return
	}
	if err != nil {
		h.log.Error("verification failed",
			logger.String("report_id", report.ID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{ReportID: report.ID, Outcome: outcome})
}

// BatchVerifyRequest submits several reports at once.
type BatchVerifyRequest struct {
	Reports []VerifyRequest `json:"reports" binding:"required,min=1,max=100"`
}

// BatchVerifyResult is the per-report slice element of a batch response.
type BatchVerifyResult struct {
	ReportID string                `json:"report_id"`
	Outcome  *verification.Outcome `json:"outcome,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// BatchVerifyResponse summarizes a batch verification.
type BatchVerifyResponse struct {
	Results []BatchVerifyResult `json:"results"`
	Total   int                 `json:"total"`
	Failed  int                 `json:"failed"`
}

// VerifyBatch handles POST /api/v1/verify/batch.
func (h *Handler) VerifyBatch(c *gin.Context) {
	var req BatchVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reports := make([]*domain.Report, 0, len(req.Reports))
	for i := range req.Reports {
		report := req.Reports[i].toReport()
		if h.reports != nil {
			if err := h.reports.Save(c.Request.Context(), report); err != nil {
				h.log.Error("report persist failed",
					logger.String("report_id", report.ID),
					logger.Error(err),
				)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store report"})
				return
			}
		}
		reports = append(reports, report)
	}

	results := h.batch.Process(c.Request.Context(), reports)

	resp := BatchVerifyResponse{
		Results: make([]BatchVerifyResult, 0, len(results)),
		Total:   len(results),
	}
	for _, r := range results {
		entry := BatchVerifyResult{ReportID: r.Report.ID, Outcome: r.Outcome}
		if r.Error != nil {
			entry.Error = r.Error.Error()
			resp.Failed++
		}
		resp.Results = append(resp.Results, entry)
	}
	c.JSON(http.StatusOK, resp)
}

// ClassifyRequest asks for a crime category without running verification.
type ClassifyRequest struct {
	Text string `json:"description" binding:"required"`
}

// Classify handles POST /api/v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict := h.classifier.Classify(req.Text)
	c.JSON(http.StatusOK, verdict)
}

// EscalationRequest asks for an urgency verdict for a report.
type EscalationRequest struct {
	Text             string `json:"description" binding:"required"`
	Location         string `json:"location"`
	TimeOfOccurrence string `json:"time_of_occurrence"`
	Channel          string `json:"channel"`
	CrimeType        string `json:"crime_type"`
}

// Escalate handles POST /api/v1/escalation. When the caller omits the crime
// type the rule engine fills it in first.
func (h *Handler) Escalate(c *gin.Context) {
	var req EscalationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crimeType := req.CrimeType
	if crimeType == "" && h.classifier != nil {
		crimeType = h.classifier.Classify(req.Text).Category
	}

	channel := req.Channel
	if channel == "" {
		channel = domain.ChannelCitizen
	}
	report := &domain.Report{
		Text:             req.Text,
		Location:         req.Location,
		TimeOfOccurrence: req.TimeOfOccurrence,
		Channel:          channel,
	}

	verdict := h.escalator.Escalate(c.Request.Context(), report, crimeType)
	c.JSON(http.StatusOK, gin.H{
		"crime_type": crimeType,
		"escalation": verdict,
	})
}

// CredibilityResponse reports a reporter's current standing.
type CredibilityResponse struct {
	ReporterID string `json:"reporter_id"`
	Score      int    `json:"score"`
	Blocked    bool   `json:"blocked"`
}

// GetCredibility handles GET /api/v1/reporters/:id/credibility.
func (h *Handler) GetCredibility(c *gin.Context) {
	reporterID := c.Param("id")

	score, err := h.ledger.Score(c.Request.Context(), reporterID)
	if err != nil {
		h.log.Error("credibility lookup failed",
			logger.String("reporter_id", reporterID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, CredibilityResponse{
		ReporterID: reporterID,
		Score:      score,
		Blocked:    score <= 0,
	})
}
