package category

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/prompt"
)

type fakeStore struct {
	names []string
}

func (f *fakeStore) GetCategory(ctx context.Context, name string) *model.Category {
	for _, n := range f.names {
		if n == name {
			return &model.Category{Name: n}
		}
	}
	return nil
}

func (f *fakeStore) ListCategoryNames(ctx context.Context) []string {
	return f.names
}

func newTestResolver(names []string, p prompt.Prompter) (*Resolver, *bytes.Buffer) {
	var out bytes.Buffer
	if p == nil {
		p = &prompt.Scripted{}
	}
	return NewResolver(&fakeStore{names: names}, p, &out, logging.NopLogger{}), &out
}

func TestResolveEmpty(t *testing.T) {
	r, _ := newTestResolver(nil, nil)
	_, ok := r.Resolve(context.Background(), "")
	assert.False(t, ok)
}

func TestResolveExactMatch(t *testing.T) {
	r, _ := newTestResolver([]string{"docs", "documents"}, nil)
	name, ok := r.Resolve(context.Background(), "docs")
	assert.True(t, ok)
	assert.Equal(t, "docs", name)
}

func TestResolveUnknownNamePassesThrough(t *testing.T) {
	r, _ := newTestResolver([]string{"docs"}, nil)
	name, ok := r.Resolve(context.Background(), "photos")
	assert.True(t, ok)
	assert.Equal(t, "photos", name)
}

func TestResolveBareWildcard(t *testing.T) {
	r, out := newTestResolver([]string{"docs"}, nil)
	_, ok := r.Resolve(context.Background(), "*")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "not a valid category pattern")
}

func TestResolveWildcardNoMatch(t *testing.T) {
	r, out := newTestResolver([]string{"docs", "documents", "downloads"}, nil)
	_, ok := r.Resolve(context.Background(), "xyz*")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "No categories match")
}

func TestResolveWildcardSingleMatch(t *testing.T) {
	r, _ := newTestResolver([]string{"docs", "documents", "downloads"}, nil)
	name, ok := r.Resolve(context.Background(), "down*")
	assert.True(t, ok)
	assert.Equal(t, "downloads", name)
}

func TestResolveWildcardAmbiguousPrompts(t *testing.T) {
	p := &prompt.Scripted{Choices: []int{1}}
	r, _ := newTestResolver([]string{"docs", "documents", "downloads"}, p)

	name, ok := r.Resolve(context.Background(), "doc*")
	assert.True(t, ok)
	assert.Equal(t, "documents", name)
	assert.Len(t, p.ChooseMsgs, 1)
}

func TestResolveWildcardCancelled(t *testing.T) {
	p := &prompt.Scripted{}
	r, out := newTestResolver([]string{"docs", "documents"}, p)

	_, ok := r.Resolve(context.Background(), "doc*")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Cancelled")
}

func TestResolveWildcardTooManyMatches(t *testing.T) {
	p := &prompt.Scripted{Choices: []int{0}}
	r, out := newTestResolver([]string{"a1", "a2", "a3"}, p)
	r.MaxWildcardMatches = 2

	_, ok := r.Resolve(context.Background(), "a*")
	assert.False(t, ok)
	assert.Contains(t, out.String(), "be more specific")
	assert.Empty(t, p.ChooseMsgs)
}

func TestResolveCaseSensitive(t *testing.T) {
	r, _ := newTestResolver([]string{"Docs"}, nil)

	name, ok := r.Resolve(context.Background(), "docs")
	assert.True(t, ok)
	assert.Equal(t, "docs", name)

	_, ok = r.Resolve(context.Background(), "docs*")
	assert.False(t, ok)
}
