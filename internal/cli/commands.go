package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// RunUpload uploads files, resolving the category first so every file in
// the batch lands in the same folder.
func RunUpload(ctx context.Context, patterns []string, categoryInput string, recursive bool) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	categoryName := ""
	if categoryInput != "" {
		resolved, ok := eng.Resolver.Resolve(ctx, categoryInput)
		if !ok {
			return nil
		}
		categoryName = resolved
		fmt.Fprintf(eng.out, "Uploading to category: %s\n", categoryName)
	}

	files := eng.Uploader.PrepareFiles(patterns, recursive)
	if len(files) == 0 {
		fmt.Fprintln(eng.out, "No valid files found to upload.")
		return nil
	}
	files = eng.Uploader.FilterTransportStreams(files)
	if len(files) == 0 {
		fmt.Fprintln(eng.out, "No files to upload after filtering.")
		return nil
	}

	uploaded, failed, records := eng.Uploader.UploadBatch(ctx, files, categoryName)

	for _, rec := range records {
		fmt.Fprintf(eng.out, "%s %s (%s) in %.1fs at %s\n",
			successStyle.Render("Uploaded"), rec.Name, formatBytes(rec.Size),
			rec.UploadDuration, formatSpeed(rec.UploadSpeed))
		fmt.Fprintf(eng.out, "  %s\n", linkStyle.Render(rec.DownloadLink))
		fmt.Fprintf(eng.out, "  Expires around %s (after %d days of inactivity)\n",
			formatExpiry(rec.UploadTime, eng.Config.ExpiryDays), eng.Config.ExpiryDays)
	}
	if failed > 0 {
		fmt.Fprintln(eng.out, errorStyle.Render(
			fmt.Sprintf("%d uploaded, %d failed.", uploaded, failed)))
	}
	return nil
}

// RunCategories lists categories with their share links in a multi-column
// layout sized to the terminal.
func RunCategories(ctx context.Context) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	cats := eng.Store.ListCategories(ctx)
	if len(cats) == 0 {
		fmt.Fprintln(eng.out, "No categories found. Upload with -c to create one.")
		return nil
	}

	fmt.Fprintln(eng.out, headerStyle.Render("Available categories:"))

	termWidth := 90
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		termWidth = w
	}

	type entry struct {
		name string
		link string
	}
	entries := make([]entry, len(cats))
	colWidth := 0
	for i, c := range cats {
		link := "<no folder link>"
		if c.FolderCode != "" {
			link = c.ShareLink()
		}
		entries[i] = entry{name: c.Name, link: link}
		if w := len(c.Name); w > colWidth {
			colWidth = w
		}
		if w := len(link); w > colWidth {
			colWidth = w
		}
	}
	colWidth += 4

	cols := termWidth / colWidth
	if cols < 1 {
		cols = 1
	}
	rows := (len(entries) + cols - 1) / cols

	for row := 0; row < rows; row++ {
		var names, links strings.Builder
		for col := 0; col < cols; col++ {
			i := col*rows + row
			if i >= len(entries) {
				continue
			}
			names.WriteString(pad(entries[i].name, colWidth))
			links.WriteString(linkStyle.Render(entries[i].link))
			links.WriteString(strings.Repeat(" ", colWidth-len(entries[i].link)))
		}
		fmt.Fprintln(eng.out, strings.TrimRight(names.String(), " "))
		fmt.Fprintln(eng.out, strings.TrimRight(links.String(), " "))
	}
	return nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RunDelete deletes a single file by ID, serial number, or name.
func RunDelete(ctx context.Context, token string, force bool) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	eng.Deleter.DeleteOne(ctx, token, force, false)
	return nil
}

// RunPurge deletes every file in a category.
func RunPurge(ctx context.Context, pattern string, force bool) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	name, ok := eng.Resolver.Resolve(ctx, pattern)
	if !ok {
		return nil
	}
	eng.Deleter.DeleteCategoryFiles(ctx, name, force)
	return nil
}

// RunClearOrphaned deletes files whose category no longer exists.
func RunClearOrphaned(ctx context.Context, force bool) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	eng.Deleter.DeleteOrphaned(ctx, force)
	return nil
}

// RunRemoveCategory removes a category, optionally deleting its files.
func RunRemoveCategory(ctx context.Context, pattern string, force bool) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	name, ok := eng.Resolver.Resolve(ctx, pattern)
	if !ok {
		return nil
	}
	if eng.Store.GetCategory(ctx, name) == nil {
		fmt.Fprintf(eng.out, "Category '%s' does not exist.\n", name)
		return nil
	}
	eng.Deleter.RemoveCategory(ctx, name, force)
	return nil
}

// RunImportToken stores an account token, asking before overwriting an
// existing one.
func RunImportToken(ctx context.Context, token string) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	if existing := eng.Store.GuestToken(ctx); existing != "" {
		fmt.Fprintln(eng.out, warnStyle.Render(
			fmt.Sprintf("An account token already exists: %s", existing)))
		fmt.Fprintln(eng.out, "If you overwrite it, make sure you have saved the old one if needed.")
		if !eng.Prompter.Confirm("Do you want to overwrite the existing token? (yes/no):", true) {
			fmt.Fprintln(eng.out, "Import cancelled.")
			return nil
		}
	}

	if !eng.Store.SaveGuestToken(ctx, token) {
		fmt.Fprintln(eng.out, errorStyle.Render("Failed to save the account token."))
		return nil
	}
	fmt.Fprintln(eng.out, successStyle.Render("Imported account token."))
	return nil
}

// RunImportCategory imports 'name|folder_id|folder_code' mappings,
// comma-separated for multiples.
func RunImportCategory(ctx context.Context, data string) error {
	eng, err := InitEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	imports, bad := parseCategoryImports(data)
	for _, item := range bad {
		fmt.Fprintln(eng.out, warnStyle.Render(fmt.Sprintf(
			"Invalid format: '%s'. Expected 'name|folder_id|folder_code'.", item)))
	}
	for _, imp := range imports {
		name, folderID, folderCode := imp.name, imp.folderID, imp.folderCode

		if existing := eng.Store.GetCategory(ctx, name); existing != nil {
			fmt.Fprintf(eng.out, "Category '%s' already exists:\n", name)
			fmt.Fprintf(eng.out, "  Folder ID: %s\n", existing.FolderID)
			fmt.Fprintf(eng.out, "  Folder Code: %s\n", existing.FolderCode)
			if !eng.Prompter.Confirm(
				fmt.Sprintf("Overwrite category '%s'? (yes/no):", name), true) {
				fmt.Fprintf(eng.out, "Skipping category '%s'.\n", name)
				continue
			}
		}

		if eng.Store.SaveCategory(ctx, name, folderID, folderCode, time.Now()) {
			fmt.Fprintln(eng.out, successStyle.Render(fmt.Sprintf(
				"Imported category '%s': ID=%s, Code=%s", name, folderID, folderCode)))
		} else {
			fmt.Fprintln(eng.out, errorStyle.Render(fmt.Sprintf(
				"Failed to save category '%s'.", name)))
		}
	}
	return nil
}

type categoryImport struct {
	name       string
	folderID   string
	folderCode string
}

// parseCategoryImports splits comma-separated 'name|folder_id|folder_code'
// entries, returning the malformed originals separately.
func parseCategoryImports(data string) (imports []categoryImport, bad []string) {
	for _, item := range strings.Split(data, ",") {
		parts := strings.Split(strings.TrimSpace(item), "|")
		if len(parts) != 3 {
			bad = append(bad, item)
			continue
		}
		imp := categoryImport{
			name:       strings.TrimSpace(parts[0]),
			folderID:   strings.TrimSpace(parts[1]),
			folderCode: strings.TrimSpace(parts[2]),
		}
		if imp.name == "" {
			bad = append(bad, item)
			continue
		}
		imports = append(imports, imp)
	}
	return imports, bad
}
