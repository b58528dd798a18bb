package planner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"lunch-menu-planner/internal/history"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/shared"
	"lunch-menu-planner/internal/weather"
)

// DefaultMaxAttempts bounds the propose/validate loop of one planning run.
const DefaultMaxAttempts = 3

// ProposalRequest is everything a proposer may use to draft a menu.
type ProposalRequest struct {
	Catalog   *recipe.Catalog
	History   *history.Tracker
	Weather   []weather.Day
	WeekStart menu.Date
	// Avoid holds ids that broke a constraint in an earlier attempt.
	Avoid   map[string]struct{}
	Attempt int
	// Last is the violation of the previous attempt, nil on the first.
	Last *Violation
}

// Proposal is a drafted menu plus the cost of drafting it.
type Proposal struct {
	Menu menu.WeeklyMenu
	Meta shared.AgentMeta
}

// Proposer drafts candidate menus. Drafts are always validated by the
// engine, so a proposer may return an invalid menu.
type Proposer interface {
	Propose(ctx context.Context, req ProposalRequest) (Proposal, error)
}

// AttemptObserver is told about every attempt of a planning run.
type AttemptObserver interface {
	ObserveAttempt(report shared.AttemptReport)
}

// Request describes one planning run.
type Request struct {
	Catalog   *recipe.Catalog
	History   *history.Tracker
	Weather   []weather.Day
	WeekStart menu.Date
}

// Result is an accepted menu.
type Result struct {
	Menu     menu.WeeklyMenu
	Score    float64
	Attempts int
	Meta     []shared.AgentMeta
}

// Engine runs the propose, validate, repair loop.
type Engine struct {
	proposer    Proposer
	maxAttempts int
	logger      *zap.Logger
	observer    AttemptObserver
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxAttempts sets the attempt budget; values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers an attempt observer.
func WithObserver(o AttemptObserver) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// NewEngine creates an Engine around a proposer.
func NewEngine(p Proposer, opts ...Option) *Engine {
	e := &Engine{
		proposer:    p,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan produces a menu that passes every hard constraint, or an error
// matching ErrProposalExhausted that carries the last violation.
func (e *Engine) Plan(ctx context.Context, req Request) (*Result, error) {
	if req.Catalog == nil {
		return nil, errors.New("failed to plan menu: catalog is required")
	}
	if req.WeekStart.IsZero() {
		return nil, errors.New("failed to plan menu: week start is required")
	}

	avoid := make(map[string]struct{})
	var last *Violation
	var metas []shared.AgentMeta

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to plan menu: %w", err)
		}

		log := e.logger.With(zap.Int("attempt", attempt))
		log.Debug("proposing menu", zap.Int("avoid", len(avoid)))

		proposal, err := e.proposer.Propose(ctx, ProposalRequest{
			Catalog:   req.Catalog,
			History:   req.History,
			Weather:   req.Weather,
			WeekStart: req.WeekStart,
			Avoid:     maps.Clone(avoid),
			Attempt:   attempt,
			Last:      last,
		})
		metas = append(metas, proposal.Meta)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("failed to plan menu: %w", ctxErr)
			}
			last = &Violation{Rule: RuleCoverage, Day: WholeWeek, Detail: "proposal failed: " + err.Error()}
			log.Info("proposal rejected", zap.Error(err))
			e.report(shared.AttemptReport{Attempt: attempt, Outcome: shared.OutcomeError, Rule: string(last.Rule), Meta: proposal.Meta})
			continue
		}

		m := hydrate(proposal.Menu, req)
		if v := Validate(m, req.Catalog, req.History); v != nil {
			last = v
			for _, id := range v.DishIDs {
				avoid[id] = struct{}{}
			}
			log.Info("proposal violates constraint",
				zap.String("rule", string(v.Rule)),
				zap.Int("day", v.Day),
				zap.Strings("dish_ids", v.DishIDs),
				zap.String("detail", v.Detail),
			)
			e.report(shared.AttemptReport{Attempt: attempt, Outcome: shared.OutcomeViolation, Rule: string(v.Rule), DishIDs: v.DishIDs, Meta: proposal.Meta})
			continue
		}

		score := Score(m, req.Catalog)
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		log.Debug("proposal accepted", zap.Float64("score", score))
		e.report(shared.AttemptReport{Attempt: attempt, Outcome: shared.OutcomeAccepted, Score: score, Meta: proposal.Meta})
		return &Result{Menu: m, Score: score, Attempts: attempt, Meta: metas}, nil
	}

	e.logger.Warn("menu planning exhausted", zap.Int("attempts", e.maxAttempts), zap.NamedError("last_violation", last))
	return nil, &ExhaustedError{Attempts: e.maxAttempts, Last: last}
}

func (e *Engine) report(r shared.AttemptReport) {
	if e.observer != nil {
		e.observer.ObserveAttempt(r)
	}
}

// hydrate fills display fields from the catalog and the forecast. It never
// changes slot ids or dates, so it cannot hide a violation.
func hydrate(m menu.WeeklyMenu, req Request) menu.WeeklyMenu {
	m = m.Clone()
	c := req.Catalog
	for i := range m.Days {
		d := &m.Days[i]
		if d.DayName == "" && !d.Date.IsZero() {
			d.DayName = menu.DayName(d.Date)
		}
		if d.Weather == nil && i < len(req.Weather) {
			w := req.Weather[i]
			d.Weather = &menu.Weather{TempMin: w.TempMin, TempMax: w.TempMax, Condition: string(w.Condition)}
		}
		if !isCustom(d.Soup.Source) {
			if s, ok := c.Soup(d.Soup.ID); ok {
				d.Soup.Name, d.Soup.Heaviness = s.Name, s.Heaviness
			}
		}
		for j := range d.Dishes {
			dr := &d.Dishes[j]
			if r, ok := dishRecipe(c, *dr); ok {
				dr.Name, dr.Protein, dr.Heaviness = r.Name, r.Protein, r.Heaviness
				continue
			}
			if !dr.Protein.Valid() {
				dr.Protein = proteinOf(c, *dr)
			}
			if !dr.Heaviness.Valid() {
				dr.Heaviness = heavinessOf(c, *dr)
			}
		}
	}
	if !isCustom(m.Specialty.Source) {
		if r, ok := c.Recipe(m.Specialty.ID); ok {
			m.Specialty.Name = r.Name
		}
	}
	return m
}
