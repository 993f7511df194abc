package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gofup/gofup/internal/model"
)

const filesPerPage = 20

type listOptions struct {
	Category  string
	SortField string
	SortOrder string
	Page      int
	MaxName   int
	Columns   []string
}

// fileRow is one rendered line of the files table, keeping raw values
// alongside for sorting.
type fileRow struct {
	serial   int
	name     string
	category string
	size     int64
	uploaded int64
	expiry   int64
	link     string

	sizeStr   string
	dateStr   string
	expiryStr string
}

var fileColumns = []struct {
	key    string
	header string
	value  func(r fileRow) string
}{
	{"id", "ID", func(r fileRow) string { return strconv.Itoa(r.serial) }},
	{"name", "File Name", func(r fileRow) string { return r.name }},
	{"category", "Category", func(r fileRow) string { return r.category }},
	{"size", "Size", func(r fileRow) string { return r.sizeStr }},
	{"date", "Upload Date", func(r fileRow) string { return r.dateStr }},
	{"expiry", "Expires On", func(r fileRow) string { return r.expiryStr }},
	{"link", "Download Link", func(r fileRow) string { return r.link }},
}

// RunFiles lists uploaded files with sorting, column selection, and
// pagination. Serial numbers always reflect the unsorted newest-first
// listing so they stay usable as delete tokens.
func RunFiles(ctx context.Context, opts listOptions) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	if opts.Category != "" {
		if eng.Store.GetCategory(ctx, opts.Category) == nil {
			fmt.Fprintf(eng.out, "Category '%s' does not exist.\n", opts.Category)
			return nil
		}
	}

	files := eng.Store.ListFiles(ctx, opts.Category)
	if len(files) == 0 {
		if opts.Category != "" {
			fmt.Fprintf(eng.out, "No files found for category '%s'.\n", opts.Category)
		} else {
			fmt.Fprintln(eng.out, "No files found.")
		}
		return nil
	}

	rows := buildRows(files, eng.Config.ExpiryDays, opts.MaxName)
	sortRows(rows, opts.SortField, opts.SortOrder)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	totalPages := (len(rows) + filesPerPage - 1) / filesPerPage
	if page > totalPages {
		page = totalPages
	}
	pageRows := rows[(page-1)*filesPerPage : min(page*filesPerPage, len(rows))]

	printTable(eng, pageRows, opts.Columns)

	fmt.Fprintf(eng.out, "Page %d of %d (showing %d of %d files)\n",
		page, totalPages, len(pageRows), len(rows))
	if totalPages > 1 {
		fmt.Fprintf(eng.out, "Use '-p N' to view page N of %d\n", totalPages)
	}
	return nil
}

func buildRows(files []model.FileRecord, expiryDays, maxName int) []fileRow {
	rows := make([]fileRow, len(files))
	for i, f := range files {
		expiry := f.UploadTime.AddDate(0, 0, expiryDays)
		rows[i] = fileRow{
			serial:    i + 1,
			name:      truncate(f.Name, maxName),
			category:  f.Category,
			size:      f.Size,
			uploaded:  f.UploadTime.Unix(),
			expiry:    expiry.Unix(),
			link:      f.DownloadLink,
			sizeStr:   formatBytes(f.Size),
			dateStr:   f.UploadTime.Format("2006-01-02 15:04:05"),
			expiryStr: formatExpiry(f.UploadTime, expiryDays),
		}
	}
	return rows
}

func sortRows(rows []fileRow, field, order string) {
	if field == "" {
		return
	}
	var less func(a, b fileRow) bool
	switch field {
	case "name":
		less = func(a, b fileRow) bool {
			return strings.ToLower(a.name) < strings.ToLower(b.name)
		}
	case "size":
		less = func(a, b fileRow) bool { return a.size < b.size }
	case "date":
		less = func(a, b fileRow) bool { return a.uploaded < b.uploaded }
	case "category":
		less = func(a, b fileRow) bool {
			return strings.ToLower(a.category) < strings.ToLower(b.category)
		}
	case "expiry":
		less = func(a, b fileRow) bool { return a.expiry < b.expiry }
	case "link":
		less = func(a, b fileRow) bool { return a.link < b.link }
	default:
		return
	}
	if order == "desc" {
		orig := less
		less = func(a, b fileRow) bool { return orig(b, a) }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func printTable(eng *Engine, rows []fileRow, selected []string) {
	cols := fileColumns
	if len(selected) > 0 {
		keys := map[string]bool{"id": true} // serial column is always shown
		for _, k := range selected {
			keys[strings.ToLower(strings.TrimSpace(k))] = true
		}
		cols = nil
		for _, c := range fileColumns {
			if keys[c.key] {
				cols = append(cols, c)
			}
		}
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c.header)
		for _, r := range rows {
			if w := len(c.value(r)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var header strings.Builder
	for i, c := range cols {
		header.WriteString(pad(c.header, widths[i]+2))
	}
	fmt.Fprintln(eng.out, headerStyle.Render(strings.TrimRight(header.String(), " ")))

	for _, r := range rows {
		var line strings.Builder
		for i, c := range cols {
			v := c.value(r)
			if c.key == "link" {
				line.WriteString(linkStyle.Render(v))
				line.WriteString(strings.Repeat(" ", widths[i]+2-len(v)))
			} else {
				line.WriteString(pad(v, widths[i]+2))
			}
		}
		fmt.Fprintln(eng.out, strings.TrimRight(line.String(), " "))
	}
}
