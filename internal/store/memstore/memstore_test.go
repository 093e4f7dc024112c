package memstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/discochess/sieve/internal/store"
)

func TestStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Read(ctx, "games.pgn"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}

	data := []byte("1. e4 *\n\n\n")
	if err := s.Write(ctx, "games.pgn", data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data[0] = 'X'

	got, err := s.Read(ctx, "games.pgn")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "1. e4 *\n\n\n" {
		t.Errorf("Read() = %q, caller mutation leaked into the store", got)
	}

	ok, err := s.Exists(ctx, "games.pgn")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v, want true, nil", ok, err)
	}

	if err := s.Write(ctx, "archive.pgn", nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"archive.pgn", "games.pgn"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}
