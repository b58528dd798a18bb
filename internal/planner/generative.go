package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"time"

	"lunch-menu-planner/internal/llm"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/shared"
	"lunch-menu-planner/internal/weather"
)

//go:embed menu_prompt.md
var menuPrompt string

var menuTemplate = template.Must(template.New("Menu").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(menuPrompt))

// ErrNoJSON is returned when a model answer contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in model answer")

// GenerativeProposer asks a language model to draft the menu.
type GenerativeProposer struct {
	textGen llm.TextGenerator
	name    string
}

// NewGenerativeProposer creates a proposer named after its backend
// ("gemini", "groq"), which is how it shows up in metrics.
func NewGenerativeProposer(textGen llm.TextGenerator, name string) *GenerativeProposer {
	return &GenerativeProposer{textGen: textGen, name: name}
}

type promptDay struct {
	Date, Name, Weather  string
	Light, Medium, Heavy int
}

type promptRecipe struct {
	ID, Name, Protein, Heaviness string
	Sales                        int
	Eligible                     bool
}

type promptSoup struct {
	ID, Name, Heaviness string
	Sales               int
}

type promptData struct {
	WeekStart           string
	Days                []promptDay
	Recipes             []promptRecipe
	Soups               []promptSoup
	Excluded            []string
	ExcludedSpecialties []string
	Avoid               []string
	Last                string
}

type menuAnswer struct {
	Specialty struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	} `json:"specialty"`
	Days []struct {
		Date      string   `json:"date"`
		SoupID    string   `json:"soup_id"`
		DishIDs   []string `json:"dish_ids"`
		Reasoning string   `json:"reasoning"`
	} `json:"days"`
}

// Propose implements Proposer.
func (p *GenerativeProposer) Propose(ctx context.Context, req ProposalRequest) (Proposal, error) {
	start := time.Now()
	prompt, err := buildMenuPrompt(req)
	if err != nil {
		return Proposal{}, err
	}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{AgentName: p.name, Usage: resp.Usage, Latency: time.Since(start)}
	if err != nil {
		return Proposal{Meta: meta}, fmt.Errorf("failed to generate menu: %w", err)
	}

	m, err := parseMenuAnswer(resp.Content, req.WeekStart)
	if err != nil {
		return Proposal{Meta: meta}, err
	}
	return Proposal{Menu: m, Meta: meta}, nil
}

func buildMenuPrompt(req ProposalRequest) (string, error) {
	data := promptData{WeekStart: req.WeekStart.String()}

	for i, d := range menu.Workdays(req.WeekStart) {
		w := weather.DefaultDay(d.Time)
		if i < len(req.Weather) {
			w = req.Weather[i]
		}
		t := weather.TargetWeights(w.TempMax)
		data.Days = append(data.Days, promptDay{
			Date:    d.String(),
			Name:    menu.DayName(d),
			Weather: fmt.Sprintf("%.0f až %.0f °C, %s", w.TempMin, w.TempMax, menu.ConditionLabel(string(w.Condition))),
			Light:   int(t.Light * 100),
			Medium:  int(t.Medium * 100),
			Heavy:   int(t.Heavy * 100),
		})
	}

	for _, r := range req.Catalog.Recipes() {
		data.Recipes = append(data.Recipes, promptRecipe{
			ID:        r.ID,
			Name:      r.Name,
			Protein:   string(r.Protein),
			Heaviness: string(r.Heaviness),
			Sales:     r.SalesCount,
			Eligible:  r.SpecialtyEligible(),
		})
	}
	for _, s := range req.Catalog.Soups() {
		data.Soups = append(data.Soups, promptSoup{ID: s.ID, Name: s.Name, Heaviness: string(s.Heaviness), Sales: s.SalesCount})
	}

	data.Excluded = req.History.DishIDs()
	data.ExcludedSpecialties = req.History.SpecialtyNames()
	for id := range req.Avoid {
		data.Avoid = append(data.Avoid, id)
	}
	slices.Sort(data.Avoid)
	if req.Last != nil {
		data.Last = req.Last.Error()
	}

	var buf bytes.Buffer
	if err := menuTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render menu prompt: %w", err)
	}
	return buf.String(), nil
}

// parseMenuAnswer reads the JSON object of a model answer. Models sometimes
// wrap it in prose or code fences.
func parseMenuAnswer(content string, weekStart menu.Date) (menu.WeeklyMenu, error) {
	from, to := strings.Index(content, "{"), strings.LastIndex(content, "}")
	if from < 0 || to < from {
		return menu.WeeklyMenu{}, ErrNoJSON
	}

	var ans menuAnswer
	if err := json.Unmarshal([]byte(content[from:to+1]), &ans); err != nil {
		return menu.WeeklyMenu{}, fmt.Errorf("failed to parse menu answer: %w", err)
	}

	m := menu.New(weekStart)
	m.Days = m.Days[:0]
	for i, d := range ans.Days {
		date := weekStart.AddDays(i)
		if parsed, err := menu.ParseDate(d.Date); err == nil {
			date = parsed
		}
		plan := menu.DayPlan{
			Date:      date,
			DayName:   menu.DayName(date),
			Soup:      menu.SoupRef{ID: d.SoupID},
			Reasoning: d.Reasoning,
		}
		for _, id := range d.DishIDs {
			plan.Dishes = append(plan.Dishes, menu.DishRef{ID: id})
		}
		m.Days = append(m.Days, plan)
	}
	m.Specialty = menu.Specialty{ID: ans.Specialty.ID, Reason: ans.Specialty.Reason}
	return m, nil
}

var _ Proposer = (*GenerativeProposer)(nil)
var _ Proposer = (*SearchProposer)(nil)
