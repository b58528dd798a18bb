package menu

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-menu-planner/internal/dish"
)

func sampleMenu() WeeklyMenu {
	m := New(NewDate(2025, time.March, 10))
	m.Specialty = Specialty{ID: "sp", Name: "Hovězí líčka na víně", Reason: "vysoká marže"}
	for i := range m.Days {
		m.Days[i].Soup = SoupRef{ID: "soup-" + string(rune('a'+i)), Name: "Polévka " + string(rune('A'+i)), Heaviness: dish.HeavinessLight}
		for j := 0; j < DishesPerDay; j++ {
			id := string(rune('a'+i)) + string(rune('0'+j))
			m.Days[i].Dishes = append(m.Days[i].Dishes, DishRef{ID: id, Name: "Jídlo " + id, Protein: dish.ProteinMixed, Heaviness: dish.HeavinessMedium})
		}
	}
	m.Days[0].Weather = &Weather{TempMin: 2, TempMax: 9, Condition: "rain"}
	return m
}

func TestNew(t *testing.T) {
	m := New(NewDate(2025, time.March, 10))

	assert.Equal(t, "2025-03-14", m.WeekEnd.String())
	require.Len(t, m.Days, 5)
	assert.Equal(t, "Pondělí", m.Days[0].DayName)
	assert.Equal(t, "Pátek", m.Days[4].DayName)
	assert.Equal(t, "2025-03-12", m.Days[2].Date.String())
}

func TestCloneIsDeep(t *testing.T) {
	m := sampleMenu()
	c := m.Clone()

	c.Days[0].Dishes[0].Name = "changed"
	c.Days[0].Weather.TempMax = 30

	assert.Equal(t, "Jídlo a0", m.Days[0].Dishes[0].Name)
	assert.Equal(t, 9.0, m.Days[0].Weather.TempMax)
}

func TestSlotIDs(t *testing.T) {
	ids := sampleMenu().SlotIDs()

	assert.Len(t, ids, 30)
	assert.Equal(t, "soup-a", ids[0])
	assert.Equal(t, "a0", ids[1])
	assert.NotContains(t, ids, "sp")
}

func TestReplace(t *testing.T) {
	m := sampleMenu()

	require.NoError(t, m.ReplaceDish(1, 2, DishRef{ID: "new", Name: "Nové"}))
	assert.Equal(t, "new", m.Days[1].Dishes[2].ID)

	require.NoError(t, m.ReplaceSoup(4, SoupRef{ID: "s-new", Name: "Kulajda"}))
	assert.Equal(t, "s-new", m.Days[4].Soup.ID)

	m.ReplaceSpecialty(Specialty{ID: "x", Name: "Tatarák", Source: SourceCustom})
	assert.Equal(t, SourceCustom, m.Specialty.Source)

	assert.ErrorIs(t, m.ReplaceDish(5, 0, DishRef{}), ErrSlotOutOfRange)
	assert.ErrorIs(t, m.ReplaceDish(0, 5, DishRef{}), ErrSlotOutOfRange)
	assert.ErrorIs(t, m.ReplaceSoup(-1, SoupRef{}), ErrSlotOutOfRange)
}

func TestJSON(t *testing.T) {
	m := sampleMenu()
	m.ID = "7b0f"
	m.CreatedAt = time.Date(2025, time.March, 6, 9, 30, 0, 0, time.UTC)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"week_start":"2025-03-10"`)
	assert.Contains(t, string(data), `"day_name":"Pondělí"`)

	var back WeeklyMenu
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)

	t.Run("TimestampDate", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2025-03-10T00:00:00Z"`), &d))
		assert.Equal(t, NewDate(2025, time.March, 10), d)
	})

	t.Run("BadDate", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"10.3.2025"`), &d))
	})
}

func TestNextWeekMonday(t *testing.T) {
	cases := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC), "2025-03-17"}, // Monday
		{time.Date(2025, time.March, 12, 23, 0, 0, 0, time.UTC), "2025-03-17"}, // Wednesday
		{time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC), "2025-03-17"}, // Friday
		{time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC), "2025-03-17"}, // Saturday
		{time.Date(2025, time.March, 16, 12, 0, 0, 0, time.UTC), "2025-03-17"}, // Sunday
		{time.Date(2025, time.December, 29, 12, 0, 0, 0, time.UTC), "2026-01-05"},
	}

	for _, tc := range cases {
		t.Run(tc.now.Weekday().String(), func(t *testing.T) {
			got := NextWeekMonday(tc.now)
			assert.Equal(t, tc.want, got.String())
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestDayName(t *testing.T) {
	names := make([]string, 0, 5)
	for _, d := range Workdays(NewDate(2025, time.March, 10)) {
		names = append(names, DayName(d))
	}
	assert.Equal(t, []string{"Pondělí", "Úterý", "Středa", "Čtvrtek", "Pátek"}, names)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(sampleMenu())

	assert.True(t, strings.HasPrefix(out, "# Polední menu 10. 3. - 14. 3. 2025\n"))
	assert.Contains(t, out, "**Specialita týdne:** Hovězí líčka na víně")
	assert.Contains(t, out, "## Pondělí 10. 3.\n_2 až 9 °C, déšť_\nPolévka: Polévka A\n1. Jídlo a0\n")
	assert.Contains(t, out, "## Pátek 14. 3.\nPolévka: Polévka E\n")
	assert.Equal(t, 25, strings.Count(out, "\n1. ")+strings.Count(out, "\n2. ")+strings.Count(out, "\n3. ")+strings.Count(out, "\n4. ")+strings.Count(out, "\n5. "))
}

func TestRenderHTML(t *testing.T) {
	m := sampleMenu()
	m.Days[2].Dishes[0].Name = "Fish & <chips>"

	out, err := RenderHTML(m)
	require.NoError(t, err)

	assert.Contains(t, out, "<h2>Polední menu 10. 3. - 14. 3. 2025</h2>")
	assert.Contains(t, out, "<h3>Středa 12. 3.</h3>")
	assert.Contains(t, out, `<p class="weather">2 až 9 °C, déšť</p>`)
	assert.Contains(t, out, "Fish &amp; &lt;chips&gt;")
	assert.Equal(t, 25, strings.Count(out, "<li>"))
}
