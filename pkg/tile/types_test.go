package tile

import (
	"errors"
	"testing"
)

func TestDefaultNames(t *testing.T) {
	names := DefaultNames()

	if err := names.Validate(Grid{Rows: 4, Cols: 4}); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	if got := names.Grid(); got != (Grid{Rows: 4, Cols: 4}) {
		t.Errorf("Grid: got %v, want 4x4", got)
	}

	flat := names.Flatten()
	if flat[0] != "brick_wall" || flat[7] != "bones" || flat[15] != "dark_concrete" {
		t.Errorf("unexpected order: %v", flat)
	}

	// Returned tables are independent copies
	names[0][0] = "changed"
	if DefaultNames()[0][0] != "brick_wall" {
		t.Error("DefaultNames shares state between calls")
	}
}

func TestParseNames(t *testing.T) {
	names, err := ParseNames(" a, b ;c,d")
	if err != nil {
		t.Fatalf("ParseNames failed: %v", err)
	}

	if names.Grid() != (Grid{Rows: 2, Cols: 2}) {
		t.Fatalf("Grid: got %v, want 2x2", names.Grid())
	}
	if names[0][1] != "b" || names[1][0] != "c" {
		t.Errorf("names not trimmed: %q", names)
	}

	if _, err := ParseNames("   "); !errors.Is(err, ErrNameTableShape) {
		t.Errorf("empty table: got %v, want ErrNameTableShape", err)
	}
}

func TestNameTable_Validate(t *testing.T) {
	tests := []struct {
		name  string
		table NameTable
		grid  Grid
		want  error
	}{
		{"valid", NameTable{{"a", "b"}, {"c", "d"}}, Grid{2, 2}, nil},
		{"zero grid", NameTable{}, Grid{0, 0}, ErrInvalidGrid},
		{"too few rows", NameTable{{"a", "b"}}, Grid{2, 2}, ErrNameTableShape},
		{"ragged row", NameTable{{"a", "b"}, {"c"}}, Grid{2, 2}, ErrNameTableShape},
		{"duplicate", NameTable{{"a", "b"}, {"c", "a"}}, Grid{2, 2}, ErrDuplicateName},
		{"empty name", NameTable{{"a", ""}}, Grid{1, 2}, ErrInvalidName},
		{"path separator", NameTable{{"a", "../b"}}, Grid{1, 2}, ErrInvalidName},
		{"dot dot", NameTable{{".."}}, Grid{1, 1}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate(tt.grid)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(DefaultPrefix, "bones"); got != "tile_bones.png" {
		t.Errorf("FileName: got %s, want tile_bones.png", got)
	}
	if got := FileName("", "bones"); got != "bones.png" {
		t.Errorf("FileName without prefix: got %s", got)
	}
}

func TestValidatePrefix(t *testing.T) {
	for _, prefix := range []string{"", DefaultPrefix, "ground-"} {
		if err := ValidatePrefix(prefix); err != nil {
			t.Errorf("ValidatePrefix(%q): unexpected error %v", prefix, err)
		}
	}
	for _, prefix := range []string{"../", "a/b_", `dir\`} {
		if err := ValidatePrefix(prefix); !errors.Is(err, ErrInvalidPrefix) {
			t.Errorf("ValidatePrefix(%q): got %v, want ErrInvalidPrefix", prefix, err)
		}
	}
}

func TestResolveNames(t *testing.T) {
	names, err := ResolveNames(nil, 0, 0)
	if err != nil {
		t.Fatalf("ResolveNames failed: %v", err)
	}
	if names[1][3] != "bones" {
		t.Errorf("expected default table, got %v", names)
	}

	names, err = ResolveNames(nil, 4, 4)
	if err != nil || names[0][0] != "brick_wall" {
		t.Errorf("explicit 4x4 should keep default names: %v %v", names, err)
	}

	names, err = ResolveNames(nil, 2, 3)
	if err != nil {
		t.Fatalf("ResolveNames failed: %v", err)
	}
	if names.Grid() != (Grid{Rows: 2, Cols: 3}) || names[1][2] != "r1c2" {
		t.Errorf("expected positional 2x3 names, got %v", names)
	}

	names, err = ResolveNames(nil, 0, 2)
	if err != nil || names.Grid() != (Grid{Rows: 4, Cols: 2}) {
		t.Errorf("missing rows should default to 4: %v %v", names, err)
	}

	custom := NameTable{{"a", "b"}}
	if _, err := ResolveNames(custom, 1, 2); err != nil {
		t.Errorf("matching grid rejected: %v", err)
	}
	if _, err := ResolveNames(custom, 2, 0); !errors.Is(err, ErrNameTableShape) {
		t.Errorf("mismatched rows: got %v, want ErrNameTableShape", err)
	}
	if _, err := ResolveNames(nil, -1, 4); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("negative rows: got %v, want ErrInvalidGrid", err)
	}
}
