package menu

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var conditionLabels = map[string]string{
	"clear":  "jasno",
	"cloudy": "oblačno",
	"fog":    "mlha",
	"rain":   "déšť",
	"snow":   "sníh",
	"storm":  "bouřky",
}

// ConditionLabel returns the Czech label of a weather condition.
func ConditionLabel(c string) string {
	if l, ok := conditionLabels[c]; ok {
		return l
	}
	return c
}

func shortDate(d Date) string {
	return fmt.Sprintf("%d. %d.", d.Day(), int(d.Month()))
}

// Title is the heading used for a published menu.
func Title(m WeeklyMenu) string {
	return fmt.Sprintf("Polední menu %s - %s %d", shortDate(m.WeekStart), shortDate(m.WeekEnd), m.WeekEnd.Year())
}

// RenderMarkdown renders the menu as Markdown, e.g. for chat delivery.
func RenderMarkdown(m WeeklyMenu) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title(m))
	if m.Specialty.Name != "" {
		fmt.Fprintf(&b, "**Specialita týdne:** %s\n", m.Specialty.Name)
		if m.Specialty.Reason != "" {
			fmt.Fprintf(&b, "_%s_\n", m.Specialty.Reason)
		}
		b.WriteString("\n")
	}

	for _, d := range m.Days {
		fmt.Fprintf(&b, "## %s %s\n", d.DayName, shortDate(d.Date))
		if d.Weather != nil {
			fmt.Fprintf(&b, "_%.0f až %.0f °C, %s_\n", d.Weather.TempMin, d.Weather.TempMax, ConditionLabel(d.Weather.Condition))
		}
		fmt.Fprintf(&b, "Polévka: %s\n", d.Soup.Name)
		for i, dr := range d.Dishes {
			fmt.Fprintf(&b, "%d. %s\n", i+1, dr.Name)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

var htmlTemplate = template.Must(template.New("menu").Funcs(template.FuncMap{
	"short":     shortDate,
	"condition": ConditionLabel,
	"temp":      func(v float64) string { return fmt.Sprintf("%.0f", v) },
}).Parse(`<h2>{{.Title}}</h2>
{{- with .Menu.Specialty}}{{if .Name}}
<p><strong>Specialita týdne:</strong> {{.Name}}{{if .Reason}} <em>{{.Reason}}</em>{{end}}</p>
{{- end}}{{end}}
{{- range .Menu.Days}}
<h3>{{.DayName}} {{short .Date}}</h3>
{{- with .Weather}}
<p class="weather">{{temp .TempMin}} až {{temp .TempMax}} °C, {{condition .Condition}}</p>
{{- end}}
<p class="soup">Polévka: {{.Soup.Name}}</p>
<ol>
{{- range $d := .Dishes}}
<li>{{$d.Name}}</li>
{{- end}}
</ol>
{{- end}}
`))

// RenderHTML renders the menu as an HTML fragment suitable for a blog post.
func RenderHTML(m WeeklyMenu) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Title string
		Menu  WeeklyMenu
	}{Title(m), m}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render menu HTML: %w", err)
	}
	return buf.String(), nil
}
