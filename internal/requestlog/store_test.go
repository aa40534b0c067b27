package requestlog

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	store := NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestStoreRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &Record{
		MediaKind:   "video",
		FrameCount:  10,
		PromptChars: 8,
		OutputChars: 120,
		LatencyMs:   950,
		Status:      StatusOK,
	}
	if err := store.Record(ctx, rec); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if rec.ID == "" {
		t.Error("record should get an id")
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestStoreRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		status := StatusOK
		if i == 4 {
			status = StatusError
		}
		if err := store.Record(ctx, &Record{MediaKind: "image", Status: status}); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store

	if err := store.Migrate(); err != nil {
		t.Errorf("nil store Migrate: %v", err)
	}
	if err := store.Record(context.Background(), &Record{}); err != nil {
		t.Errorf("nil store Record: %v", err)
	}
	records, err := store.Recent(context.Background(), 10)
	if err != nil || records != nil {
		t.Errorf("nil store Recent = (%v, %v)", records, err)
	}
	if NewStore(nil) != nil {
		t.Error("NewStore(nil) should return nil")
	}
}
