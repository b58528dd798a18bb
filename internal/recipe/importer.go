package recipe

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lunch-menu-planner/internal/dish"
)

// ErrMissingColumn is returned when an export table lacks a required header.
var ErrMissingColumn = errors.New("export is missing a required column")

// Column headers of the POS "Seznam kalkulací" export.
const (
	colID       = "ID"
	colName     = "Název"
	colCategory = "Kategorie"
	colCost     = "Náklad porce bez DPH"
	colPrice    = "Prodej porce s DPH"
	colActive   = "Aktivní"
)

// salesColumns are the accepted headers for the sold-portions column of the
// sales export, in order of preference.
var salesColumns = []string{"Počet", "Prodáno", "Počet porcí", "Množství"}

// ParseCalculationExport reads the HTML calculation list exported by the POS
// and returns the active lunch-menu recipes and soups it contains.
func ParseCalculationExport(r io.Reader) ([]RawRecord, error) {
	tbl, err := readTable(r, colID, colName)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{colCategory, colActive} {
		if _, ok := tbl.cols[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var records []RawRecord
	for _, row := range tbl.rows {
		id := tbl.cell(row, colID)
		name := cleanName(tbl.cell(row, colName))
		category := tbl.cell(row, colCategory)
		if id == "" || name == "" || !strings.EqualFold(tbl.cell(row, colActive), "X") {
			continue
		}

		soup := dish.IsSoupCategory(category)
		if !soup && !dish.IsLunchMenuCategory(category) {
			continue
		}

		rec := RawRecord{ID: id, Name: name, Category: category, Soup: soup}
		if v, ok := parseNumber(tbl.cell(row, colCost)); ok {
			rec.Cost = Float(math.Round(v*100) / 100)
		}
		if v, ok := parseNumber(tbl.cell(row, colPrice)); ok {
			rec.Price = Float(math.Round(v))
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseSalesExport reads the HTML sales report and returns sold portions per
// dish id. Repeated ids are summed.
func ParseSalesExport(r io.Reader) (map[string]int, error) {
	tbl, err := readTable(r, colID)
	if err != nil {
		return nil, err
	}

	countCol := ""
	for _, c := range salesColumns {
		if _, ok := tbl.cols[c]; ok {
			countCol = c
			break
		}
	}
	if countCol == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, salesColumns[0])
	}

	sales := make(map[string]int)
	for _, row := range tbl.rows {
		id := tbl.cell(row, colID)
		n, ok := parseNumber(tbl.cell(row, countCol))
		if id == "" || !ok || n < 0 {
			continue
		}
		sales[id] += int(math.Round(n))
	}
	return sales, nil
}

// MergeSales sets SalesCount on every record found in sales.
func MergeSales(records []RawRecord, sales map[string]int) []RawRecord {
	out := make([]RawRecord, len(records))
	for i, rec := range records {
		if n, ok := sales[rec.ID]; ok {
			rec.SalesCount = n
		}
		out[i] = rec
	}
	return out
}

type table struct {
	cols map[string]int
	rows [][]string
}

func (t table) cell(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// readTable finds the first <table> whose header row carries all the
// required columns.
func readTable(r io.Reader, required ...string) (table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return table{}, fmt.Errorf("failed to parse export HTML: %w", err)
	}

	var found table
	var ok bool
	doc.Find("table").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rows := s.Find("tr")
		if rows.Length() == 0 {
			return true
		}
		cols := make(map[string]int)
		rows.First().Find("th, td").Each(func(i int, c *goquery.Selection) {
			cols[cellText(c)] = i
		})
		for _, col := range required {
			if _, has := cols[col]; !has {
				return true
			}
		}

		found = table{cols: cols}
		rows.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			var row []string
			tr.Find("th, td").Each(func(_ int, c *goquery.Selection) {
				row = append(row, cellText(c))
			})
			found.rows = append(found.rows, row)
		})
		ok = true
		return false
	})
	if !ok {
		return table{}, fmt.Errorf("%w: %q", ErrMissingColumn, strings.Join(required, ", "))
	}
	return found, nil
}

func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(strings.ReplaceAll(s.Text(), "\u00a0", " "))
}

// cleanName drops the POS "-s" suffix that marks a side-dish variant.
func cleanName(name string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "-s"))
}

// parseNumber accepts Czech formatting: decimal commas, grouping spaces and
// a trailing currency.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Kč")
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
