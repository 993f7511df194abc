// Package category resolves user-supplied category names, including
// trailing-asterisk wildcard patterns, against the cached category set.
package category

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/prompt"
)

// Store is the slice of the metadata cache the resolver needs.
type Store interface {
	GetCategory(ctx context.Context, name string) *model.Category
	ListCategoryNames(ctx context.Context) []string
}

// Resolver turns category input into a concrete category name.
type Resolver struct {
	store    Store
	prompter prompt.Prompter
	out      io.Writer
	log      logging.Logger

	// MaxWildcardMatches caps how many candidates a wildcard may produce
	// before the resolver refuses to prompt. Zero disables the cap.
	MaxWildcardMatches int
}

func NewResolver(store Store, prompter prompt.Prompter, out io.Writer, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Resolver{
		store:              store,
		prompter:           prompter,
		out:                out,
		log:                log,
		MaxWildcardMatches: 10,
	}
}

// Resolve maps input to a category name. A name ending in '*' is a prefix
// pattern matched case-sensitively against the cached names; anything else
// is returned as-is when no exact match exists, since a new category is
// created on the next successful upload. The second result is false when
// resolution failed or the user cancelled.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, bool) {
	if input == "" {
		return "", false
	}

	if !strings.HasSuffix(input, "*") {
		if c := r.store.GetCategory(ctx, input); c != nil {
			return c.Name, true
		}
		return input, true
	}

	prefix := strings.TrimSuffix(input, "*")
	if prefix == "" {
		fmt.Fprintln(r.out, "A bare '*' is not a valid category pattern.")
		r.log.Warn(ctx, "rejected bare wildcard pattern")
		return "", false
	}

	var matches []string
	for _, name := range r.store.ListCategoryNames(ctx) {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}

	switch {
	case len(matches) == 0:
		fmt.Fprintf(r.out, "No categories match '%s'.\n", input)
		return "", false
	case len(matches) == 1:
		fmt.Fprintf(r.out, "Using category '%s'.\n", matches[0])
		return matches[0], true
	}

	if r.MaxWildcardMatches > 0 && len(matches) > r.MaxWildcardMatches {
		fmt.Fprintf(r.out, "Pattern '%s' matches %d categories. Please be more specific.\n",
			input, len(matches))
		r.log.Warn(ctx, "wildcard matched too many categories",
			"pattern", input, "matches", len(matches))
		return "", false
	}

	idx, ok := r.prompter.Choose(
		fmt.Sprintf("Pattern '%s' matches %d categories:", input, len(matches)), matches)
	if !ok {
		fmt.Fprintln(r.out, "Cancelled.")
		return "", false
	}
	return matches[idx], true
}
