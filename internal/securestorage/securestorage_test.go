package securestorage

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	keyring.MockInit()
	return NewStorage(t.TempDir())
}

func TestSaveAndList(t *testing.T) {
	s := newTestStorage(t)
	p := Profile{Name: "staging", Driver: "mssql", Host: "db1", Port: 1433, Username: "sa", Database: "master"}
	if err := s.Save(p, "secret"); err != nil {
		t.Fatalf("saving profile: %v", err)
	}

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("listing profiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Host != "db1" {
		t.Errorf("expected saved profile, got %+v", profiles)
	}

	pw, err := s.Password("staging")
	if err != nil {
		t.Fatalf("loading password: %v", err)
	}
	if pw != "secret" {
		t.Errorf("expected password round-trip, got %q", pw)
	}
}

func TestSaveReplacesByName(t *testing.T) {
	s := newTestStorage(t)
	s.Save(Profile{Name: "prod", Host: "old"}, "a")
	s.Save(Profile{Name: "prod", Host: "new"}, "b")

	profiles, _ := s.List()
	if len(profiles) != 1 || profiles[0].Host != "new" {
		t.Errorf("expected replacement, got %+v", profiles)
	}
	if pw, _ := s.Password("prod"); pw != "b" {
		t.Errorf("expected updated password, got %q", pw)
	}
}

func TestSaveRequiresName(t *testing.T) {
	s := newTestStorage(t)
	if err := s.Save(Profile{}, "x"); err == nil {
		t.Error("expected an error for an unnamed profile")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	s.Save(Profile{Name: "dev", Host: "db"}, "pw")
	if err := s.Delete("dev"); err != nil {
		t.Fatalf("deleting profile: %v", err)
	}
	profiles, _ := s.List()
	if len(profiles) != 0 {
		t.Errorf("expected no profiles, got %+v", profiles)
	}
	if _, err := s.Password("dev"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListEmpty(t *testing.T) {
	s := newTestStorage(t)
	profiles, err := s.List()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if profiles != nil {
		t.Errorf("expected nil for no saved profiles, got %+v", profiles)
	}
}
