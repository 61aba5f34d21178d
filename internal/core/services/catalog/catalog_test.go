package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"soundboard-bot/internal/core/domain"
)

type mockStorage struct {
	mu       sync.Mutex
	names    []string
	listErr  error
	saveFunc func(ctx context.Context, name string, content io.Reader) error
	saved    []string
}

func (m *mockStorage) List(ctx context.Context) ([]domain.Sound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	sounds := make([]domain.Sound, 0, len(m.names))
	for _, n := range m.names {
		sounds = append(sounds, newTestSound(n))
	}
	return sounds, nil
}

func (m *mockStorage) Save(ctx context.Context, name string, content io.Reader) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, name, content); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, name)
	m.names = append(m.names, name)
	return nil
}

func (m *mockStorage) setNames(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = names
}

func newTestSound(name string) domain.Sound {
	return domain.NewFileSound(name, "/sounds/"+name+".mp3", func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("audio")), nil
	})
}

func loadedCatalog(t *testing.T, names ...string) (*Catalog, *mockStorage) {
	t.Helper()
	storage := &mockStorage{names: names}
	c := New(storage)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c, storage
}

func TestNew_StartsEmpty(t *testing.T) {
	c := New(&mockStorage{})

	if c.Len() != 0 {
		t.Errorf("expected empty catalog, got %d sounds", c.Len())
	}
	if _, err := c.Get(domain.Wildcard); !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestLoad_ListsExactlyStoredNames(t *testing.T) {
	c, _ := loadedCatalog(t, "boo", "airhorn", "boo", "*", "")

	got := c.ListNames()
	want := []string{"airhorn", "boo"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLoad_StorageUnavailableLeavesCatalogEmpty(t *testing.T) {
	storage := &mockStorage{listErr: fmt.Errorf("open data/mp3: %w", domain.ErrStorageUnavailable)}
	c := New(storage)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("expected nil error for missing storage, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty catalog, got %d", c.Len())
	}
}

func TestLoad_StorageUnavailableClearsPreviousSounds(t *testing.T) {
	c, storage := loadedCatalog(t, "airhorn")

	storage.listErr = domain.ErrStorageUnavailable
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected catalog to be emptied, got %v", c.ListNames())
	}
}

func TestLoad_OtherErrorKeepsPreviousSnapshot(t *testing.T) {
	c, storage := loadedCatalog(t, "airhorn")

	storage.listErr = errors.New("permission denied")
	if err := c.Reload(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if !c.Has("airhorn") {
		t.Error("expected previous snapshot to be kept")
	}
}

func TestReload_ReplacesInsteadOfMerging(t *testing.T) {
	c, storage := loadedCatalog(t, "airhorn", "boo")

	storage.setNames("boo", "cheer")
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	want := []string{"boo", "cheer"}
	if got := c.ListNames(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if c.Has("airhorn") {
		t.Error("removed sound should disappear after reload")
	}
}

func TestGet(t *testing.T) {
	c, _ := loadedCatalog(t, "airhorn", "boo")

	t.Run("exact name", func(t *testing.T) {
		s, err := c.Get("boo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Name() != "boo" {
			t.Errorf("expected boo, got %s", s.Name())
		}
	})

	t.Run("absent name", func(t *testing.T) {
		_, err := c.Get("nope")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("wildcard returns a member", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			s, err := c.Get(domain.Wildcard)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.Has(s.Name()) {
				t.Fatalf("wildcard returned unknown sound %q", s.Name())
			}
		}
	})
}

func TestGet_WildcardUsesRandomIndex(t *testing.T) {
	c, _ := loadedCatalog(t, "a", "b", "c")
	c.intn = func(n int) int {
		if n != 3 {
			t.Errorf("expected n=3, got %d", n)
		}
		return 2
	}

	s, err := c.Get(domain.Wildcard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "c" {
		t.Errorf("expected c, got %s", s.Name())
	}
}

func TestGet_EmptyCatalogForExactName(t *testing.T) {
	c := New(&mockStorage{})

	if _, err := c.Get("airhorn"); !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestAutocomplete(t *testing.T) {
	c, _ := loadedCatalog(t, "Airhorn", "boo", "BOOM", "cheer")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all plus wildcard", "", []string{"Airhorn", "BOOM", "boo", "cheer", "*"}},
		{"case-insensitive", "boo", []string{"BOOM", "boo"}},
		{"upper-case query", "AIR", []string{"Airhorn"}},
		{"wildcard matches itself", "*", []string{"*"}},
		{"no match", "xyz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Autocomplete(tt.query)
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAutocomplete_CappedAtPlatformLimit(t *testing.T) {
	names := make([]string, 40)
	for i := range names {
		names[i] = fmt.Sprintf("sound%02d", i)
	}
	c, _ := loadedCatalog(t, names...)

	got := c.Autocomplete("")
	if len(got) != MaxChoices {
		t.Errorf("expected %d choices, got %d", MaxChoices, len(got))
	}
}

func TestSuggest(t *testing.T) {
	c, _ := loadedCatalog(t, "airhorn", "boo")

	if got, ok := c.Suggest("airhrn"); !ok || got != "airhorn" {
		t.Errorf("expected airhorn suggestion, got %q (%v)", got, ok)
	}
	if _, ok := c.Suggest("zzzzzzzz"); ok {
		t.Error("expected no suggestion for unrelated input")
	}
}

func TestAdd_Success(t *testing.T) {
	c, storage := loadedCatalog(t, "airhorn")

	if err := c.Add(context.Background(), "boo", strings.NewReader("data")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !c.Has("boo") {
		t.Error("expected new sound to be visible after add")
	}
	if len(storage.saved) != 1 || storage.saved[0] != "boo" {
		t.Errorf("expected boo to be saved, got %v", storage.saved)
	}
}

func TestAdd_DuplicateLeavesCatalogUnchanged(t *testing.T) {
	c, storage := loadedCatalog(t, "airhorn")

	err := c.Add(context.Background(), "airhorn", strings.NewReader("data"))
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(storage.saved) != 0 {
		t.Error("storage should not be touched for a duplicate")
	}
	if got := c.ListNames(); !slices.Equal(got, []string{"airhorn"}) {
		t.Errorf("catalog changed: %v", got)
	}
}

func TestAdd_RejectsReservedNames(t *testing.T) {
	c, storage := loadedCatalog(t)

	for _, name := range []string{"", "*", "../evil", `a\b`} {
		err := c.Add(context.Background(), name, strings.NewReader("data"))
		if !errors.Is(err, domain.ErrInvalidFormat) {
			t.Errorf("name %q: expected ErrInvalidFormat, got %v", name, err)
		}
	}
	if len(storage.saved) != 0 {
		t.Error("storage should not be touched for invalid names")
	}
}

func TestAdd_SaveError(t *testing.T) {
	storage := &mockStorage{
		saveFunc: func(ctx context.Context, name string, content io.Reader) error {
			return domain.ErrDuplicate
		},
	}
	c := New(storage)

	err := c.Add(context.Background(), "boo", strings.NewReader("data"))
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected wrapped storage error, got %v", err)
	}
}

func TestConcurrentReloadAndRead(t *testing.T) {
	c, storage := loadedCatalog(t, "a", "b")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				storage.setNames("a", "b")
			} else {
				storage.setNames("c", "d")
			}
			_ = c.Reload(ctx)
		}(i)
		go func() {
			defer wg.Done()
			names := c.ListNames()
			if len(names) != 2 {
				t.Errorf("observed partial catalog: %v", names)
			}
		}()
	}
	wg.Wait()
}
