package planner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"lunch-menu-planner/internal/dish"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/recipe"
	"lunch-menu-planner/internal/shared"
	"lunch-menu-planner/internal/weather"
)

// SearchProposerName identifies the local search proposer in metrics.
const SearchProposerName = "search"

const (
	defaultRestarts = 12
	// maxDayNodes bounds the backtracking effort spent on one day.
	maxDayNodes = 20000
)

// SearchProposer drafts menus locally: randomized greedy selection with
// per-day backtracking, restarted several times. The best scoring draft
// that passes every hard constraint wins; when none does, the draft with
// the fewest violations is returned for the engine to reject.
type SearchProposer struct {
	seed     uint64
	restarts int
}

// SearchOption configures a SearchProposer.
type SearchOption func(*SearchProposer)

// WithSeed fixes the random seed. Zero picks a fresh seed per call.
func WithSeed(seed uint64) SearchOption {
	return func(p *SearchProposer) { p.seed = seed }
}

// WithRestarts sets how many drafts are built per call.
func WithRestarts(n int) SearchOption {
	return func(p *SearchProposer) {
		if n > 0 {
			p.restarts = n
		}
	}
}

// NewSearchProposer creates a SearchProposer.
func NewSearchProposer(opts ...SearchOption) *SearchProposer {
	p := &SearchProposer{restarts: defaultRestarts}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Propose implements Proposer.
func (p *SearchProposer) Propose(ctx context.Context, req ProposalRequest) (Proposal, error) {
	start := time.Now()
	if req.Catalog == nil {
		return Proposal{}, errors.New("catalog is required")
	}

	seed := p.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, uint64(req.Attempt)))

	var best, fallback menu.WeeklyMenu
	bestScore, fewest := math.Inf(-1), math.MaxInt
	found := false
	for i := 0; i < p.restarts; i++ {
		if err := ctx.Err(); err != nil {
			return Proposal{}, err
		}
		m := newDraft(req, rng).build()
		if vs := ValidateAll(m, req.Catalog, req.History); len(vs) > 0 {
			if len(vs) < fewest {
				fallback, fewest = m, len(vs)
			}
			continue
		}
		if s := Score(m, req.Catalog); s > bestScore {
			best, bestScore, found = m, s, true
		}
	}

	meta := shared.AgentMeta{AgentName: SearchProposerName, Latency: time.Since(start)}
	if found {
		return Proposal{Menu: best, Meta: meta}, nil
	}
	return Proposal{Menu: fallback, Meta: meta}, nil
}

// draft is the state of one randomized build.
type draft struct {
	req     ProposalRequest
	rng     *rand.Rand
	season  dish.Season
	weights []weather.Weights
	pool    []recipe.Recipe
	soups   []recipe.Soup
}

func newDraft(req ProposalRequest, rng *rand.Rand) *draft {
	d := &draft{
		req:    req,
		rng:    rng,
		season: dish.SeasonForMonth(req.WeekStart.Month()),
	}
	for i := 0; i < menu.WorkdaysPerWeek; i++ {
		temp := weather.DefaultTempMax
		if i < len(req.Weather) {
			temp = req.Weather[i].TempMax
		}
		d.weights = append(d.weights, weather.TargetWeights(temp))
	}
	for _, r := range req.Catalog.Recipes() {
		if !req.History.IsDishExcluded(r.ID) {
			d.pool = append(d.pool, r)
		}
	}
	for _, s := range req.Catalog.Soups() {
		if !req.History.IsDishExcluded(s.ID) {
			d.soups = append(d.soups, s)
		}
	}
	d.dropAvoided()
	return d
}

// dropAvoided removes avoided ids from the pools when what is left can still
// cover the week. Otherwise they stay and only lose ranking.
func (d *draft) dropAvoided() {
	if len(d.req.Avoid) == 0 {
		return
	}
	pool := slices.DeleteFunc(slices.Clone(d.pool), func(r recipe.Recipe) bool { return d.avoided(r.ID) })
	if len(pool) > menu.WorkdaysPerWeek*menu.DishesPerDay &&
		d.coverable(pool, nil, menu.WorkdaysPerWeek) &&
		(d.hasSpecialty(pool) || !d.hasSpecialty(d.pool)) {
		d.pool = pool
	}
	soups := slices.DeleteFunc(slices.Clone(d.soups), func(s recipe.Soup) bool { return d.avoided(s.ID) })
	if len(soups) >= menu.WorkdaysPerWeek {
		d.soups = soups
	}
}

func (d *draft) hasSpecialty(pool []recipe.Recipe) bool {
	return slices.ContainsFunc(pool, func(r recipe.Recipe) bool {
		return r.SpecialtyEligible() && !d.req.History.IsSpecialtyExcluded(r.Name)
	})
}

func (d *draft) avoided(id string) bool {
	_, ok := d.req.Avoid[id]
	return ok
}

func (d *draft) build() menu.WeeklyMenu {
	m := menu.New(d.req.WeekStart)

	if sp, ok := d.pickSpecialty(); ok {
		m.Specialty = menu.Specialty{
			ID:     sp.ID,
			Name:   sp.Name,
			Reason: fmt.Sprintf("marže %.0f Kč", sp.Margin()),
		}
		d.pool = slices.DeleteFunc(d.pool, func(r recipe.Recipe) bool { return r.ID == sp.ID })
	}

	for i := range m.Days {
		day := &m.Days[i]
		if i < len(d.req.Weather) {
			w := d.req.Weather[i]
			day.Weather = &menu.Weather{TempMin: w.TempMin, TempMax: w.TempMax, Condition: string(w.Condition)}
		}
		day.Reasoning = reasoning(d.weights[i])

		if s, ok := d.pickSoup(); ok {
			day.Soup = menu.SoupRef{ID: s.ID, Name: s.Name, Heaviness: s.Heaviness}
		}

		chosen := d.fillDay(i)
		for _, r := range chosen {
			day.Dishes = append(day.Dishes, menu.DishRef{ID: r.ID, Name: r.Name, Protein: r.Protein, Heaviness: r.Heaviness})
		}
		d.pool = slices.DeleteFunc(d.pool, func(r recipe.Recipe) bool {
			return slices.ContainsFunc(chosen, func(c recipe.Recipe) bool { return c.ID == r.ID })
		})
	}
	return m
}

func reasoning(w weather.Weights) string {
	return fmt.Sprintf("cíl: lehká %.0f %%, střední %.0f %%, těžká %.0f %%", w.Light*100, w.Medium*100, w.Heavy*100)
}

func (d *draft) countVege(pool []recipe.Recipe) int {
	n := 0
	for _, r := range pool {
		if r.Protein == dish.ProteinVege {
			n++
		}
	}
	return n
}

// pickSpecialty prefers eligible recipes with a high margin. A vegetarian
// specialty is taken only when enough vegetarian dishes remain for the days.
func (d *draft) pickSpecialty() (recipe.Recipe, bool) {
	type cand struct {
		r     recipe.Recipe
		score float64
	}
	spareVege := d.countVege(d.pool) > menu.WorkdaysPerWeek
	var cands []cand
	for _, r := range d.pool {
		if !r.SpecialtyEligible() || d.req.History.IsSpecialtyExcluded(r.Name) {
			continue
		}
		score := r.Margin() * (0.8 + 0.4*d.rng.Float64())
		if d.avoided(r.ID) {
			score -= 1000
		}
		if r.Protein == dish.ProteinVege && !spareVege {
			score -= 500
		}
		cands = append(cands, cand{r, score})
	}
	if len(cands) == 0 {
		// Nothing qualifies; offer the best margin so the validator can say why.
		if len(d.pool) == 0 {
			return recipe.Recipe{}, false
		}
		return slices.MaxFunc(d.pool, func(a, b recipe.Recipe) int { return cmp.Compare(a.Margin(), b.Margin()) }), true
	}
	return slices.MaxFunc(cands, func(a, b cand) int { return cmp.Compare(a.score, b.score) }).r, true
}

func (d *draft) salesNorm(n int) float64 {
	if !d.req.Catalog.HasSales() {
		return 0
	}
	return math.Log1p(float64(n)) / math.Log1p(float64(d.req.Catalog.MaxSales()))
}

func (d *draft) seasonFit(s dish.Season) float64 {
	switch {
	case s == d.season:
		return 0.2
	case s == dish.SeasonAllYear || d.season == dish.SeasonAllYear:
		return 0
	default:
		return -0.2
	}
}

func (d *draft) pickSoup() (recipe.Soup, bool) {
	if len(d.soups) == 0 {
		return recipe.Soup{}, false
	}
	best, bestScore := -1, math.Inf(-1)
	for i, s := range d.soups {
		score := d.salesNorm(s.SalesCount) + d.seasonFit(s.Season) + 0.5*d.rng.Float64()
		if d.avoided(s.ID) {
			score -= 10
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	s := d.soups[best]
	d.soups = slices.Delete(d.soups, best, best+1)
	return s, true
}

// fillDay picks five dishes for day i from the pool. It backtracks over
// candidates in utility order and accepts a set only when the remaining
// pool can still cover the remaining days.
func (d *draft) fillDay(i int) []recipe.Recipe {
	daysLeft := menu.WorkdaysPerWeek - i - 1
	order := d.rank(i)

	for _, mixedCap := range []int{1, menu.DishesPerDay} {
		if chosen, ok := d.search(order, daysLeft, mixedCap); ok {
			return chosen
		}
	}

	// No valid day exists; take the best ranked dishes so the draft stays
	// complete where the pool allows it.
	n := min(menu.DishesPerDay, len(order))
	return slices.Clone(order[:n])
}

// rank orders the pool by utility for day i.
func (d *draft) rank(i int) []recipe.Recipe {
	share := make(map[dish.Protein]float64)
	for _, r := range d.pool {
		share[r.Protein]++
	}
	for p := range share {
		share[p] /= float64(len(d.pool))
	}

	utility := make(map[string]float64, len(d.pool))
	for _, r := range d.pool {
		u := d.weights[i].For(r.Heaviness) +
			0.5*d.salesNorm(r.SalesCount) +
			d.seasonFit(r.Season) +
			0.3*share[r.Protein] +
			0.4*d.rng.Float64()
		if d.avoided(r.ID) {
			u -= 2
		}
		utility[r.ID] = u
	}

	order := slices.Clone(d.pool)
	slices.SortStableFunc(order, func(a, b recipe.Recipe) int {
		return cmp.Compare(utility[b.ID], utility[a.ID])
	})
	return order
}

func (d *draft) search(order []recipe.Recipe, daysLeft, mixedCap int) ([]recipe.Recipe, bool) {
	c := d.req.Catalog
	vegeTotal := d.countVege(order)
	maxVege := vegeTotal - daysLeft

	chosen := make([]recipe.Recipe, 0, menu.DishesPerDay)
	counts := make(map[dish.Protein]int)
	nodes := 0

	fits := func(r recipe.Recipe) bool {
		switch {
		case r.Protein == dish.ProteinMixed:
			if counts[r.Protein] >= mixedCap {
				return false
			}
		case r.Protein == dish.ProteinVege:
			if counts[r.Protein] >= min(maxPerProtein, maxVege) {
				return false
			}
		default:
			if counts[r.Protein] >= maxPerProtein {
				return false
			}
		}
		for _, o := range chosen {
			if b := c.Base(r.ID); b != "" && b == c.Base(o.ID) {
				return false
			}
			if dish.SimilarNames(r.Name, o.Name) {
				return false
			}
		}
		return true
	}

	var dfs func(from int) bool
	dfs = func(from int) bool {
		if len(chosen) == menu.DishesPerDay {
			return counts[dish.ProteinVege] >= 1 && d.coverable(order, chosen, daysLeft)
		}
		needVege := counts[dish.ProteinVege] == 0 && len(chosen) == menu.DishesPerDay-1
		for i := from; i < len(order); i++ {
			if nodes++; nodes > maxDayNodes {
				return false
			}
			r := order[i]
			if needVege && r.Protein != dish.ProteinVege {
				continue
			}
			if !fits(r) {
				continue
			}
			chosen = append(chosen, r)
			counts[r.Protein]++
			if dfs(i + 1) {
				return true
			}
			chosen = chosen[:len(chosen)-1]
			counts[r.Protein]--
		}
		return false
	}

	if maxVege < 1 || !dfs(0) {
		return nil, false
	}
	return slices.Clone(chosen), true
}

// coverable is a necessary condition for the pool left after taking chosen
// to fill daysLeft more days: enough vegetarian dishes, and enough dishes
// once each protein is capped per day.
func (d *draft) coverable(order, chosen []recipe.Recipe, daysLeft int) bool {
	if daysLeft == 0 {
		return true
	}
	taken := make(map[string]bool, len(chosen))
	for _, r := range chosen {
		taken[r.ID] = true
	}
	counts := make(map[dish.Protein]int)
	for _, r := range order {
		if !taken[r.ID] {
			counts[r.Protein]++
		}
	}
	if counts[dish.ProteinVege] < daysLeft {
		return false
	}
	capacity := 0
	for p, n := range counts {
		if p == dish.ProteinMixed {
			capacity += n
			continue
		}
		capacity += min(n, maxPerProtein*daysLeft)
	}
	return capacity >= menu.DishesPerDay*daysLeft
}
