package render

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"gameshelf/internal/catalog"
	"gameshelf/internal/models"
	"gameshelf/internal/validate"
)

func strPtr(s string) *string { return &s }

// --------------------------------------------------------------------------
// TestNew: renderer creation in dev mode and prod mode
// --------------------------------------------------------------------------

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		devMode bool
	}{
		{"dev mode", true},
		{"prod mode", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rn, err := New(tt.devMode)
			if err != nil {
				t.Fatalf("New(devMode=%v) returned error: %v", tt.devMode, err)
			}

			for _, name := range []string{
				"index", "error",
				"category_list", "category_detail", "category_form", "category_delete",
				"item_list", "item_detail", "item_form", "item_delete",
			} {
				if _, ok := rn.templates[name]; !ok {
					t.Errorf("expected template %q to be parsed", name)
				}
			}

			// base.html should NOT appear as a standalone template key.
			if _, ok := rn.templates["base"]; ok {
				t.Error("base.html should not be registered as a separate template")
			}
		})
	}
}

// --------------------------------------------------------------------------
// TestPageRendering: full pages include the layout and the content block
// --------------------------------------------------------------------------

func TestPageRendering(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	rn.Page(w, req, "category_list", &PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    []models.Category{{ID: id, Name: validate.Escape("Tom & Jerry")}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("full page should contain the base layout")
	}
	if !strings.Contains(body, `href="/category/`+id.String()+`"`) {
		t.Error("listing should link to the canonical category location")
	}
	if !strings.Contains(body, "Tom &amp; Jerry") {
		t.Errorf("stored value should render once-escaped, body: %s", body)
	}
	if strings.Contains(body, "&amp;amp;") {
		t.Error("stored value was escaped twice")
	}
	if !strings.Contains(body, `class="active" href="/categories"`) {
		t.Error("categories navigation entry should be active")
	}
}

// --------------------------------------------------------------------------
// TestHTMXPartialRendering: HTMX requests only render the content block
// --------------------------------------------------------------------------

func TestHTMXPartialRendering(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")

	w := httptest.NewRecorder()
	rn.Page(w, req, "index", &PageData{
		Title:   "Home",
		Section: "home",
		Data:    &catalog.Summary{Counts: catalog.Counts{Categories: 2, Items: 5}},
	})

	body := w.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("HTMX partial should NOT contain <!DOCTYPE html>")
	}
	if !strings.Contains(body, "<strong>2</strong> categories") || !strings.Contains(body, "<strong>5</strong> items") {
		t.Errorf("HTMX partial should contain the counts, body: %s", body)
	}
}

func TestCategoryFormShowsErrors(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	form := &catalog.CategoryForm{
		Category: models.Category{Name: "ab"},
		Errors: validate.Errors{
			{Field: "name", Message: "Name must be at least 3 characters long."},
			{Field: "file", Message: "The uploaded file must be an image."},
		},
	}

	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodPost, "/category/create", nil), "category_form", &PageData{Data: form})

	body := w.Body.String()
	for _, want := range []string{
		`value="ab"`,
		"Name must be at least 3 characters long.",
		"The uploaded file must be an image.",
		`enctype="multipart/form-data"`,
		"Create category",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("category form should contain %q", want)
		}
	}
}

func TestItemFormRestoresSelection(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	selected, other := uuid.New(), uuid.New()
	form := &catalog.ItemForm{
		Item: models.Item{Name: "Foo", Rating: 1, CategoryIDs: []uuid.UUID{selected}},
		Categories: []models.CategoryOption{
			{Category: models.Category{ID: selected, Name: "RPGs"}, Checked: true},
			{Category: models.Category{ID: other, Name: "Strategy"}},
		},
		IsEdit: true,
	}

	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodGet, "/", nil), "item_form", &PageData{Data: form})

	body := w.Body.String()
	if !strings.Contains(body, `value="`+selected.String()+`" checked`) {
		t.Error("selected category should be checked")
	}
	if strings.Contains(body, `value="`+other.String()+`" checked`) {
		t.Error("unselected category should not be checked")
	}
	if !strings.Contains(body, "Update item") {
		t.Error("edit form should say Update item")
	}
}

func TestItemDetail(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	item := &models.Item{
		ID:            uuid.New(),
		Name:          "Foo",
		Description:   "A game",
		Price:         10,
		Rating:        4.5,
		TitleImageURL: strPtr("https://cdn.example.com/catalog/box.png"),
		Publisher:     strPtr("Acme"),
		Categories:    []models.Category{{ID: uuid.New(), Name: "RPGs"}},
	}

	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodGet, "/", nil), "item_detail", &PageData{Data: item})

	body := w.Body.String()
	for _, want := range []string{
		`src="https://cdn.example.com/catalog/box.png"`,
		"$10",
		"4.5 / 5",
		"Acme",
		">RPGs</a>",
		`href="` + item.URL() + `/delete"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("item detail should contain %q", want)
		}
	}
}

func TestCategoryDeleteBlocked(t *testing.T) {
	rn, err := New(false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	info := &catalog.CategoryDeletion{
		Category: models.Category{ID: uuid.New(), Name: "RPGs"},
		Items:    []models.Item{{ID: uuid.New(), Name: "Baldur"}, {ID: uuid.New(), Name: "Zelda"}},
		Blocked:  true,
	}

	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodGet, "/", nil), "category_delete", &PageData{Data: info})

	body := w.Body.String()
	if !strings.Contains(body, "Baldur") || !strings.Contains(body, "Zelda") {
		t.Error("blocked delete should list the referencing items")
	}
	if strings.Contains(body, `<form method="post">`) {
		t.Error("blocked delete should not offer the delete form")
	}
}

// --------------------------------------------------------------------------
// TestMissingTemplate: unknown names produce a 500
// --------------------------------------------------------------------------

func TestMissingTemplate(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	w := httptest.NewRecorder()
	rn.Page(w, httptest.NewRequest(http.MethodGet, "/", nil), "nonexistent", &PageData{})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for missing template, got %d", w.Code)
	}
}

func TestErrorDetailOnlyInDevMode(t *testing.T) {
	cause := errors.New("pq: connection refused")

	for _, dev := range []bool{true, false} {
		rn, err := New(dev)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}

		w := httptest.NewRecorder()
		rn.Error(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusInternalServerError, cause)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("dev=%v: status got %d, want 500", dev, w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "Internal Server Error") {
			t.Errorf("dev=%v: body should contain the status text", dev)
		}
		if got := strings.Contains(body, "connection refused"); got != dev {
			t.Errorf("dev=%v: detail shown = %v", dev, got)
		}
	}
}

// --------------------------------------------------------------------------
// TestIsHTMXHelper: internal helper detects HX-Request header
// --------------------------------------------------------------------------

func TestIsHTMXHelper(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected bool
	}{
		{"no header", "", false},
		{"header true", "true", true},
		{"header false", "false", false},
		{"header random", "yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("HX-Request", tt.header)
			}
			if got := isHTMX(req); got != tt.expected {
				t.Errorf("isHTMX(): got %v, want %v", got, tt.expected)
			}
		})
	}
}
