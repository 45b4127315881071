package postgresql

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
)

func TestOpenAndPing(t *testing.T) {
	t.Parallel()

	db, err := Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestPingNilDatabase(t *testing.T) {
	t.Parallel()

	if err := Ping(context.Background(), nil); err == nil {
		t.Fatal("Ping(nil) should fail")
	}
}
