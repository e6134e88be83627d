// internal/workers/ingestion/extract-criteria/handler.go
package extractcriteria

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lender-match-workers/internal/common/logger"
	"lender-match-workers/internal/common/metrics"
	"lender-match-workers/internal/criteria"
	"lender-match-workers/internal/extraction"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "extract-criteria"

var ErrDocumentInvalid = errors.New("DOCUMENT_INVALID")

// Handler turns guideline document text into structured lender programs.
// Model-path failures never fail the job: the parser always falls back to
// deterministic extraction and returns at least one program.
type Handler struct {
	config *Config
	parser *extraction.Parser
	logger logger.Logger
}

func NewHandler(config *Config, parser *extraction.Parser, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		parser: parser,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		if errors.Is(err, ErrDocumentInvalid) {
			errorCode = ErrDocumentInvalid.Error()
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.DocumentText) == "" {
		return nil, fmt.Errorf("%w: documentText is required", ErrDocumentInvalid)
	}

	useAI := h.config.UseAI
	if input.UseAI != nil {
		useAI = *input.UseAI
	}

	var programs []criteria.ExtractedProgram
	if useAI {
		programs = h.parser.Programs(ctx, input.DocumentText)
	} else {
		programs = h.parser.DeterministicPrograms(input.DocumentText)
	}

	h.logger.Info("extraction complete", map[string]interface{}{
		"lenderSlug": input.LenderSlug,
		"programs":   len(programs),
		"useAi":      useAI,
	})

	return &Output{
		Programs:     programs,
		ProgramCount: len(programs),
		LenderSlug:   input.LenderSlug,
		ExtractedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
