package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReference_DefaultsToCanonicalGrid(t *testing.T) {
	tbl, err := loadReference("")
	if err != nil {
		t.Fatalf("loadReference(\"\") error = %v", err)
	}
	if tbl.Len() != 15 {
		t.Errorf("Len() = %d, want 15", tbl.Len())
	}
}

func TestLoadReference_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transformed_reference.csv")
	data := "Wind Speed Range (kn),Cloud Cover Range (oktas),K Value\n0-12,0-2,-2.2\n0-12,2-4,-1.7\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := loadReference(path)
	if err != nil {
		t.Fatalf("loadReference() error = %v", err)
	}
	if k, err := tbl.LookupK(5, 3); err != nil || k != -1.7 {
		t.Errorf("LookupK(5, 3) = %v, %v, want -1.7", k, err)
	}
}

func TestLoadReference_MissingFile(t *testing.T) {
	if _, err := loadReference(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("loadReference() on missing file: want error")
	}
}
