package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"gameshelf/internal/models"
)

// testCategory creates a category removed after the test.
func testCategory(t *testing.T, s *CategoryStore, name string) *models.Category {
	t.Helper()
	c, err := s.Create(context.Background(), &models.Category{Name: uniqueName(name), Description: "Test category"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func TestItemStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewItemStore(db)
	ctx := context.Background()

	rpg := testCategory(t, cats, "rpg")
	action := testCategory(t, cats, "act")

	publisher := "Bethesda"
	released := time.Date(2011, time.November, 11, 0, 0, 0, 0, time.UTC)
	created, err := s.Create(ctx, &models.Item{
		Name:        uniqueName("skyrim"),
		Description: "Open world RPG",
		Price:       40,
		NumInStock:  3,
		CategoryIDs: []uuid.UUID{action.ID, rpg.ID},
		Publisher:   &publisher,
		ReleaseDate: &released,
		Rating:      4.5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		cleanItems(t, db, created.ID)
		cleanCategories(t, db, rpg.ID, action.ID)
	})

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected item, got nil")
	}
	if found.Price != 40 || found.NumInStock != 3 || found.Rating != 4.5 {
		t.Errorf("numbers: got price=%d stock=%d rating=%v", found.Price, found.NumInStock, found.Rating)
	}
	if found.Publisher == nil || *found.Publisher != publisher {
		t.Errorf("publisher: got %v", found.Publisher)
	}
	if found.ReleaseDateInput() != "2011-11-11" {
		t.Errorf("release date: got %q", found.ReleaseDateInput())
	}

	// References keep submission order.
	if len(found.CategoryIDs) != 2 || found.CategoryIDs[0] != action.ID || found.CategoryIDs[1] != rpg.ID {
		t.Errorf("category ids: got %v", found.CategoryIDs)
	}
	if len(found.Categories) != 2 || found.Categories[1].Name != rpg.Name {
		t.Errorf("categories not populated: %+v", found.Categories)
	}

	byCategory, err := s.ListByCategory(ctx, rpg.ID)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].ID != created.ID {
		t.Errorf("ListByCategory: got %+v", byCategory)
	}
}

func TestItemStoreUpdateReplacesReferences(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewItemStore(db)
	ctx := context.Background()

	a := testCategory(t, cats, "a")
	b := testCategory(t, cats, "b")

	created, err := s.Create(ctx, &models.Item{
		Name: uniqueName("item"), Description: "Before", Price: 1,
		CategoryIDs: []uuid.UUID{a.ID}, Rating: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		cleanItems(t, db, created.ID)
		cleanCategories(t, db, a.ID, b.ID)
	})

	created.Description = "After"
	created.CategoryIDs = []uuid.UUID{b.ID}
	if err := s.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, _ := s.FindByID(ctx, created.ID)
	if found.Description != "After" {
		t.Errorf("description: got %q", found.Description)
	}
	if len(found.CategoryIDs) != 1 || found.CategoryIDs[0] != b.ID {
		t.Errorf("category ids: got %v, want [%s]", found.CategoryIDs, b.ID)
	}

	left, _ := s.ListByCategory(ctx, a.ID)
	if len(left) != 0 {
		t.Errorf("old reference should be gone, got %d items", len(left))
	}
}

func TestItemStoreReferencedCategoryCannotBeDeleted(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryStore(db)
	s := NewItemStore(db)
	ctx := context.Background()

	c := testCategory(t, cats, "held")
	item, err := s.Create(ctx, &models.Item{
		Name: uniqueName("item"), Description: "Holds a reference", Price: 1,
		CategoryIDs: []uuid.UUID{c.ID}, Rating: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, c.ID) })

	if err := cats.Delete(ctx, c.ID); err == nil {
		t.Error("expected the foreign key to refuse deleting a referenced category")
	}

	if err := s.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete item: %v", err)
	}
	if err := cats.Delete(ctx, c.ID); err != nil {
		t.Errorf("Delete unreferenced category: %v", err)
	}
}

func TestItemStoreFindMissing(t *testing.T) {
	db := testDB(t)
	s := NewItemStore(db)

	found, err := s.FindByID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for missing item, got %+v", found)
	}
}
