// internal/workers/underwriting/match-lenders/handler.go
package matchlenders

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lender-match-workers/internal/common/database"
	"lender-match-workers/internal/common/logger"
	"lender-match-workers/internal/common/metrics"
	"lender-match-workers/internal/criteria"
	"lender-match-workers/internal/matching"
	"lender-match-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "match-lenders"

	programsCachePrefix = "lender:programs:"
)

var (
	ErrApplicationInvalid = errors.New("APPLICATION_INVALID")
	ErrCriteriaInvalid    = errors.New("CRITERIA_INVALID")
	ErrNoLenders          = errors.New("NO_LENDERS_FOUND")
	ErrMatchFailed        = errors.New("MATCH_FAILED")
)

// applicationSchema is checked against the snake-normalized application map
// before decoding. Only the loan request is structurally required; every
// other fact is optional and the evaluation rules decide how absence scores.
const applicationSchemaJSON = `{
  "type": "object",
  "required": ["loan_request"],
  "properties": {
    "loan_request": {
      "type": "object",
      "required": ["amount"],
      "properties": {
        "amount": {"type": "integer", "minimum": 1},
        "term_months": {"type": "integer", "minimum": 1}
      }
    },
    "business": {"type": "object"},
    "guarantor": {"type": "object"},
    "business_credit": {"type": "object"}
  }
}`

var applicationSchema = gojsonschema.NewStringLoader(applicationSchemaJSON)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	es     *database.ElasticsearchClient
	logger logger.Logger
}

// NewHandler wires the matching worker. es may be nil, which disables audit
// indexing.
func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, es *database.ElasticsearchClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
		es:     es,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, ErrApplicationInvalid) || errors.Is(err, ErrCriteriaInvalid) || errors.Is(err, ErrNoLenders) {
			errorCode = unwrapCode(err)
			retries = 0
		} else if errors.Is(err, ErrMatchFailed) {
			errorCode = "MATCH_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	app, err := h.decodeApplication(input.Application)
	if err != nil {
		return nil, err
	}

	lenders, err := h.loadLenders(ctx, input.LenderIDs)
	if err != nil {
		return nil, err
	}
	if len(lenders) == 0 {
		return nil, fmt.Errorf("%w: no active lenders to evaluate", ErrNoLenders)
	}

	results := h.evaluateLenders(app, lenders)
	matching.SortResults(results)

	output := &Output{
		MatchResults: results,
		ProcessedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, r := range results {
		if r.Eligible {
			output.EligibleCount++
		}
	}
	if len(results) > 0 && results[0].Eligible {
		id := results[0].LenderID
		output.BestLenderID = &id
	}

	h.indexAudit(ctx, input.ApplicationID, output)
	return output, nil
}

// decodeApplication normalizes keys, validates the structural contract, and
// decodes into typed facts.
func (h *Handler) decodeApplication(raw map[string]interface{}) (matching.Application, error) {
	if len(raw) == 0 {
		return matching.Application{}, fmt.Errorf("%w: application is required", ErrApplicationInvalid)
	}

	normalized := criteria.MapKeysToSnake(raw)
	result, err := gojsonschema.Validate(applicationSchema, gojsonschema.NewGoLoader(normalized))
	if err != nil {
		return matching.Application{}, fmt.Errorf("%w: %v", ErrApplicationInvalid, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return matching.Application{}, fmt.Errorf("%w: %s", ErrApplicationInvalid, strings.Join(details, "; "))
	}

	var app matching.Application
	if err := criteria.Decode(raw, &app); err != nil {
		return matching.Application{}, fmt.Errorf("%w: %v", ErrApplicationInvalid, err)
	}
	return app, nil
}

type lenderWithPrograms struct {
	lender   models.Lender
	programs []criteria.Program
}

func (h *Handler) loadLenders(ctx context.Context, lenderIDs []string) ([]lenderWithPrograms, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(lenderIDs) > 0 {
		query := `SELECT id, name FROM lenders WHERE active = TRUE AND id = ANY($1) ORDER BY name`
		rows, err = h.db.QueryContext(ctx, query, pq.Array(lenderIDs))
	} else {
		query := `SELECT id, name FROM lenders WHERE active = TRUE ORDER BY name`
		rows, err = h.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query lenders: %v", ErrMatchFailed, err)
	}
	defer rows.Close()

	var lenders []models.Lender
	for rows.Next() {
		l := models.Lender{Active: true}
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("%w: scan lender: %v", ErrMatchFailed, err)
		}
		lenders = append(lenders, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate lenders: %v", ErrMatchFailed, err)
	}

	out := make([]lenderWithPrograms, 0, len(lenders))
	for _, l := range lenders {
		programs, err := h.loadPrograms(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, lenderWithPrograms{lender: l, programs: programs})
	}
	return out, nil
}

// loadPrograms reads a lender's programs through the redis cache.
func (h *Handler) loadPrograms(ctx context.Context, lenderID string) ([]criteria.Program, error) {
	cacheKey := programsCachePrefix + lenderID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var programs []criteria.Program
		if err := json.Unmarshal([]byte(val), &programs); err == nil {
			return programs, nil
		}
	}

	query := `SELECT id, name, tier, criteria FROM lender_programs WHERE lender_id = $1 ORDER BY created_at`
	rows, err := h.db.QueryContext(ctx, query, lenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: query programs for lender %s: %v", ErrMatchFailed, lenderID, err)
	}
	defer rows.Close()

	var programs []criteria.Program
	for rows.Next() {
		var (
			row  models.LenderProgramRow
			tier sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Name, &tier, &row.Criteria); err != nil {
			return nil, fmt.Errorf("%w: scan program: %v", ErrMatchFailed, err)
		}
		row.LenderID = lenderID
		if tier.Valid {
			row.Tier = &tier.String
		}

		p := criteria.Program{ID: row.ID, Name: row.Name, Tier: row.Tier}
		if len(row.Criteria) > 0 {
			// A program whose stored criteria do not decode must never match
			// vacuously: the job fails without retry until the row is fixed.
			if err := json.Unmarshal(row.Criteria, &p.Criteria); err != nil {
				return nil, fmt.Errorf("%w: decode criteria for program %s: %v", ErrCriteriaInvalid, p.ID, err)
			}
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate programs: %v", ErrMatchFailed, err)
	}

	data, _ := json.Marshal(programs)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return programs, nil
}

// evaluateLenders runs the matching engine across lenders concurrently,
// bounded by MaxConcurrency. Lenders without programs are skipped with a
// warning rather than failing the whole job.
func (h *Handler) evaluateLenders(app matching.Application, lenders []lenderWithPrograms) []matching.MatchResult {
	concurrency := h.config.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	results := make([]*matching.MatchResult, len(lenders))
	var wg sync.WaitGroup
	for i, lw := range lenders {
		wg.Add(1)
		go func(i int, lw lenderWithPrograms) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := matching.Evaluate(app, lw.lender.ID, lw.lender.Name, lw.programs)
			if err != nil {
				h.logger.Warn("skipping lender", map[string]interface{}{
					"lenderId": lw.lender.ID,
					"error":    err.Error(),
				})
				return
			}
			results[i] = &result
		}(i, lw)
	}
	wg.Wait()

	out := make([]matching.MatchResult, 0, len(lenders))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// indexAudit writes the run into Elasticsearch. Failures are logged only;
// the match outcome is already final.
func (h *Handler) indexAudit(ctx context.Context, applicationID string, output *Output) {
	if h.es == nil {
		return
	}
	doc := auditDocument{
		ApplicationID: applicationID,
		LenderCount:   len(output.MatchResults),
		EligibleCount: output.EligibleCount,
		Results:       output.MatchResults,
		ProcessedAt:   output.ProcessedAt,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		h.logger.Error("marshal audit document", map[string]interface{}{"error": err.Error()})
		return
	}
	res, err := h.es.Client.Index(
		h.config.AuditIndex,
		bytes.NewReader(data),
		h.es.Client.Index.WithContext(ctx),
	)
	if err != nil {
		h.logger.Error("index audit document", map[string]interface{}{"error": err.Error()})
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		h.logger.Error("index audit document", map[string]interface{}{"status": res.Status()})
	}
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

// failJob reports a failed job. Retryable failures go back to the broker with
// a retry budget; business failures raise a BPMN error for the process to
// route.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	if retries > 0 {
		remaining := job.Retries - 1
		if remaining > retries {
			remaining = retries
		}
		if remaining < 0 {
			remaining = 0
		}
		_, err := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(remaining).
			ErrorMessage(errorMessage).
			Send(context.Background())
		if err != nil {
			h.logger.Error("failed to fail job", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	}

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

func unwrapCode(err error) string {
	switch {
	case errors.Is(err, ErrApplicationInvalid):
		return ErrApplicationInvalid.Error()
	case errors.Is(err, ErrCriteriaInvalid):
		return ErrCriteriaInvalid.Error()
	case errors.Is(err, ErrNoLenders):
		return ErrNoLenders.Error()
	}
	return "UNKNOWN_ERROR"
}
