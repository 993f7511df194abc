package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	configDir string
)

// rootCmd is the base command for gofup.
var rootCmd = &cobra.Command{
	Use:   "gofup",
	Short: "Upload files to GoFile.io and track them locally",
	Long: `gofup uploads files to GoFile.io and keeps a local database of every
upload: its download link, folder, category, and the guest account token
needed to delete it again.

Categories group uploads into shared remote folders. Category arguments
accept a trailing '*' as a prefix pattern (e.g. 'doc*').`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Ctrl-C cancels the command context so
// batch operations stop cleanly between items.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Use alternate config directory")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(clearOrphanedCmd)
	rootCmd.AddCommand(removeCategoryCmd)
	rootCmd.AddCommand(importTokenCmd)
	rootCmd.AddCommand(importCategoryCmd)
}

var (
	uploadCategory  string
	uploadRecursive bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file|pattern>...",
	Short: "Upload files to GoFile.io",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunUpload(cmd.Context(), args, uploadCategory, uploadRecursive)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories and their folder links",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunCategories(cmd.Context())
	},
}

var (
	filesCategory string
	filesSort     string
	filesOrder    string
	filesPage     int
	filesMaxName  int
	filesColumns  []string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List uploaded files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunFiles(cmd.Context(), listOptions{
			Category:  filesCategory,
			SortField: filesSort,
			SortOrder: filesOrder,
			Page:      filesPage,
			MaxName:   filesMaxName,
			Columns:   filesColumns,
		})
	},
}

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id|serial|name>",
	Short: "Delete an uploaded file",
	Long: `Delete an uploaded file from GoFile.io and the local database.

The argument may be a file ID, a serial number from 'gofup files', or an
exact file name. With --force only the local record is removed and the
remote copy is left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunDelete(cmd.Context(), args[0], deleteForce)
	},
}

var purgeForce bool

var purgeCmd = &cobra.Command{
	Use:   "purge <category>",
	Short: "Delete all files in a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunPurge(cmd.Context(), args[0], purgeForce)
	},
}

var clearOrphanedForce bool

var clearOrphanedCmd = &cobra.Command{
	Use:   "clear-orphaned",
	Short: "Delete files whose category no longer exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunClearOrphaned(cmd.Context(), clearOrphanedForce)
	},
}

var removeCategoryForce bool

var removeCategoryCmd = &cobra.Command{
	Use:   "remove-category <category>",
	Short: "Remove a category, optionally deleting its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRemoveCategory(cmd.Context(), args[0], removeCategoryForce)
	},
}

var importTokenCmd = &cobra.Command{
	Use:   "import-token <token>",
	Short: "Import an account token for future uploads and deletions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunImportToken(cmd.Context(), args[0])
	},
}

var importCategoryCmd = &cobra.Command{
	Use:   "import-category <name|folder_id|folder_code>[,...]",
	Short: "Import category-to-folder mappings",
	Long: `Import one or more category mappings exported from another machine.

Each mapping is 'name|folder_id|folder_code'; separate multiple mappings
with commas.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunImportCategory(cmd.Context(), args[0])
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadCategory, "category", "c", "", "Category to upload into")
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "Recurse into directories")

	filesCmd.Flags().StringVarP(&filesCategory, "category", "c", "", "Only list files in this category")
	filesCmd.Flags().StringVarP(&filesSort, "sort", "s", "", "Sort by: name, size, date, category, expiry, link")
	filesCmd.Flags().StringVarP(&filesOrder, "order", "o", "asc", "Sort order: asc or desc")
	filesCmd.Flags().IntVarP(&filesPage, "page", "p", 1, "Page number")
	filesCmd.Flags().IntVar(&filesMaxName, "max-name-length", 0, "Truncate file names to this many characters")
	filesCmd.Flags().StringSliceVar(&filesColumns, "columns", nil, "Columns to show: id, name, category, size, date, expiry, link")

	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete the local record only")
	purgeCmd.Flags().BoolVarP(&purgeForce, "force", "f", false, "Delete local records only")
	clearOrphanedCmd.Flags().BoolVarP(&clearOrphanedForce, "force", "f", false, "Delete local records only")
	removeCategoryCmd.Flags().BoolVarP(&removeCategoryForce, "force", "f", false, "Delete local records only")
}
