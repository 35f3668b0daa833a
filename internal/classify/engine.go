// Package classify derives per-dimension statuses for normalized
// records. Built-in dimensions are compiled-in decision tables; custom
// dimensions are CEL expressions loaded from the repository and
// hot-reloadable.
package classify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// Engine evaluates built-in and custom dimensions over records.
type Engine struct {
	mu       sync.RWMutex
	env      *cel.Env
	compiled map[string]*CompiledDimension
}

// CompiledDimension holds a pre-compiled CEL program for a custom
// dimension.
type CompiledDimension struct {
	Config  *domain.DimensionConfig
	Program cel.Program
}

// NewEngine creates a classification engine with an empty custom
// dimension set.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("days_to_go_live", cel.IntType),
		cel.Variable("has_go_live_date", cel.BoolType),
		cel.Variable("rolled_out", cel.BoolType),
		cel.Variable("region", cel.StringType),
		cel.Variable("implementation_type", cel.StringType),
		cel.Variable("assignee", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:      env,
		compiled: make(map[string]*CompiledDimension),
	}, nil
}

// ValidateDimension compiles a custom dimension without loading it.
func (e *Engine) ValidateDimension(cfg *domain.DimensionConfig) error {
	if cfg == nil {
		return fmt.Errorf("dimension config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileDimension(cfg)
	return err
}

// LoadDimension compiles and loads a custom dimension.
func (e *Engine) LoadDimension(cfg *domain.DimensionConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileDimension(cfg)
	if err != nil {
		return err
	}

	e.compiled[cfg.ID] = compiled
	return nil
}

// ReloadDimensions replaces the loaded custom dimensions atomically.
// Disabled configs are skipped; a compile failure leaves the previous
// set untouched.
func (e *Engine) ReloadDimensions(configs []*domain.DimensionConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[string]*CompiledDimension)
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		compiled, err := e.compileDimension(cfg)
		if err != nil {
			return err
		}
		next[cfg.ID] = compiled
	}

	e.compiled = next
	return nil
}

// LoadedDimensions returns the currently loaded custom dimension
// configurations.
func (e *Engine) LoadedDimensions() []*domain.DimensionConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	configs := make([]*domain.DimensionConfig, 0, len(e.compiled))
	for _, c := range e.compiled {
		configs = append(configs, c.Config)
	}
	return configs
}

// DimensionsCount returns the number of loaded custom dimensions.
func (e *Engine) DimensionsCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// Classify derives every applicable dimension status for each record
// in place: the domain's built-in dimensions first, then any loaded
// custom dimensions scoped to that domain.
func (e *Engine) Classify(ctx context.Context, records []domain.Record, asOf time.Time) error {
	e.mu.RLock()
	custom := make([]*CompiledDimension, 0, len(e.compiled))
	for _, c := range e.compiled {
		custom = append(custom, c)
	}
	e.mu.RUnlock()

	for i := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec := &records[i]
		if rec.Statuses == nil {
			rec.Statuses = make(map[domain.DimensionID]domain.Status)
		}

		for _, dim := range builtinDimensions[rec.Domain] {
			rec.Statuses[dim.ID] = dim.Classify(rec, asOf)
		}

		for _, c := range custom {
			if c.Config.Domain != "" && c.Config.Domain != rec.Domain {
				continue
			}
			status, err := e.evaluateCustom(c, rec)
			if err != nil {
				return fmt.Errorf("custom dimension %s: %w", c.Config.ID, err)
			}
			rec.Statuses[domain.DimensionID(c.Config.ID)] = status
		}
	}

	return nil
}

func (e *Engine) evaluateCustom(c *CompiledDimension, rec *domain.Record) (domain.Status, error) {
	fields := make(map[string]string, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[string(k)] = v
	}

	days := 0
	hasDate := rec.DaysToGoLive != nil
	if hasDate {
		days = *rec.DaysToGoLive
	}

	activation := map[string]any{
		"fields":              fields,
		"days_to_go_live":     days,
		"has_go_live_date":    hasDate,
		"rolled_out":          rec.RolledOut(),
		"region":              rec.Region,
		"implementation_type": rec.ImplementationType,
		"assignee":            rec.Assignee,
	}

	out, _, err := c.Program.Eval(activation)
	if err != nil {
		return domain.StatusNone, fmt.Errorf("evaluation error: %w", err)
	}

	return toStatus(out), nil
}

// toStatus converts a CEL result to a status. Empty string means not
// applicable.
func toStatus(val ref.Val) domain.Status {
	if s, ok := val.(types.String); ok {
		return domain.Status(s)
	}
	return domain.StatusNone
}

// Close clears the loaded custom dimensions.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = make(map[string]*CompiledDimension)
	return nil
}

func (e *Engine) compileDimension(cfg *domain.DimensionConfig) (*CompiledDimension, error) {
	if cfg.Expression == "" {
		return nil, fmt.Errorf("dimension %s: expression is required", cfg.ID)
	}

	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile dimension %s: %w", cfg.ID, issues.Err())
	}

	if ast.OutputType() != cel.StringType {
		return nil, fmt.Errorf("dimension %s: expression must return a status string, got %s",
			cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for dimension %s: %w", cfg.ID, err)
	}

	return &CompiledDimension{Config: cfg, Program: program}, nil
}
