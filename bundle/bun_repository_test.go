package bundle

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestBunRepository_SaveLoadList(t *testing.T) {
	db := newTestDB(t, "bundle_repo_test")
	repo := NewBunRepository(db)
	ctx := context.Background()

	key := testBundleKey(t, "assessment:Pre:el")
	if _, err := repo.Load(ctx, key); !errors.Is(err, ErrBundleNotFound) {
		t.Fatalf("expected ErrBundleNotFound, got %v", err)
	}

	b := sampleBundle(t, "assessment:Pre:el")
	if err := repo.Save(ctx, b); err != nil {
		t.Fatalf("Save() create error = %v", err)
	}

	loaded, err := repo.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Sections) != 1 || loaded.Sections[0].Name != "title" {
		t.Fatalf("Load() sections = %+v", loaded.Sections)
	}
	if got := loaded.Sections[0].Data[0].TargetValue; got != "TEST UNIT" {
		t.Fatalf("Load() target = %q", got)
	}

	b.Sections[0].Data[0].TargetValue = "updated"
	if err := repo.Save(ctx, b); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}
	loaded, err = repo.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() after update error = %v", err)
	}
	if got := loaded.Sections[0].Data[0].TargetValue; got != "updated" {
		t.Fatalf("Load() after update target = %q", got)
	}

	others := []*Bundle{
		sampleBundle(t, "unit:1:el"),
		sampleBundle(t, "unit:1:ru"),
	}
	if err := repo.SaveAll(ctx, others); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	listed, err := repo.ListLocale(ctx, "el")
	if err != nil {
		t.Fatalf("ListLocale() error = %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("ListLocale() returned %d bundles, want 2", len(listed))
	}
	if listed[0].Key.String() != "assessment:Pre:el" || listed[1].Key.String() != "unit:1:el" {
		t.Fatalf("ListLocale() order = [%s %s]", listed[0].Key.String(), listed[1].Key.String())
	}
}

func TestBunProgressRepository_CRUDEvents(t *testing.T) {
	db := newTestDB(t, "progress_repo_test")
	repo := NewBunProgressRepository(db)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	key := testResourceKey(t, "lesson:2")
	if _, err := repo.Load(ctx, key); !errors.Is(err, ErrProgressNotFound) {
		t.Fatalf("expected ErrProgressNotFound, got %v", err)
	}

	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	record := NewProgress(key)
	record.SetStatus("el", StatusInProgress)
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("Save() create error = %v", err)
	}
	assertProgressEvent(t, events, ProgressCreated)

	record.IsTranslatable = false
	record.SetStatus("el", StatusDone)
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}
	assertProgressEvent(t, events, ProgressUpdated)

	loaded, err := repo.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.IsTranslatable {
		t.Fatal("IsTranslatable = true, want false")
	}
	if loaded.Status("el") != StatusDone {
		t.Fatalf("Status(el) = %v, want done", loaded.Status("el"))
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Key.String() != "lesson:2" {
		t.Fatalf("List() = %+v", records)
	}
}

func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*bundleModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create bundle table: %v", err)
	}
	if _, err := db.NewCreateTable().Model((*progressModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create progress table: %v", err)
	}
	return db
}
