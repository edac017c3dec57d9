package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/KaramelBytes/fieldscan/internal/schema"
)

type htmlLoader struct{}

func (htmlLoader) Name() string             { return "html" }
func (htmlLoader) Extensions() []string     { return []string{".html", ".htm"} }
func (htmlLoader) CanLoad(path string) bool { return hasExt(path, ".html", ".htm") }

// Load reads the first <table>. The header is the first row made of <th> cells,
// or the first row when the table has none.
func (htmlLoader) Load(path string, opt Options) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no <table> element", schema.ErrMalformedInput)
	}

	var grid [][]string
	headerAt := -1
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// skip rows of nested tables
		if tr.Closest("table").Get(0) != table.Get(0) {
			return
		}
		var row []string
		tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			text := strings.Join(strings.Fields(cell.Text()), " ")
			for i := 0; i < colspan(cell); i++ {
				row = append(row, text)
			}
		})
		if headerAt < 0 && tr.ChildrenFiltered("th").Length() > 0 && tr.ChildrenFiltered("td").Length() == 0 {
			headerAt = len(grid)
		}
		grid = append(grid, row)
	})
	if len(grid) == 0 {
		return tabular(tableFromRows(nil, nil)), nil
	}
	if headerAt < 0 {
		headerAt = 0
	}
	header := grid[headerAt]
	rows := grid[headerAt+1:]
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}
	return tabular(tableFromRows(header, rows)), nil
}

func colspan(cell *goquery.Selection) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell.AttrOr("colspan", "1")))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, 1000)
}
