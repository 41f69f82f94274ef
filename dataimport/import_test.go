package dataimport

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadPoints_CSVWithLabels(t *testing.T) {
	path := writeTempFile(t, "points.csv", "x,Label,y\n0,a,1\n2.5,,3\n-1,c,4e1\n")

	dataset, err := LoadPoints(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dataset.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", dataset.Len())
	}
	_, dims := dataset.Points.Dims()
	if dims != 2 {
		t.Fatalf("expected 2 dimensions, got %d", dims)
	}

	wantLabels := []string{"a", "1", "c"}
	for i, want := range wantLabels {
		if dataset.Labels[i] != want {
			t.Errorf("label %d: expected %q, got %q", i, want, dataset.Labels[i])
		}
	}

	if got := dataset.Points.At(2, 1); got != 40 {
		t.Errorf("expected point 2 y=40, got %f", got)
	}
	if got := dataset.Points.At(1, 0); got != 2.5 {
		t.Errorf("expected point 1 x=2.5, got %f", got)
	}
}

func TestLoadPoints_CSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not a number", "x,y\n1,abc\n"},
		{"ragged row", "x,y\n1,2\n3\n"},
		{"only labels", "label\na\n"},
		{"header only", "x,y\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, "bad.csv", tc.content)
			if _, err := LoadPoints(path); err == nil {
				t.Errorf("expected error for %q", tc.content)
			}
		})
	}
}

func TestLoadPoints_JSONArrays(t *testing.T) {
	path := writeTempFile(t, "points.json", `[[0, 1, 2], [3, 4, 5]]`)

	dataset, err := LoadPoints(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dataset.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", dataset.Len())
	}
	if dataset.Labels[1] != "1" {
		t.Errorf("expected index label, got %q", dataset.Labels[1])
	}
	if dataset.Points.At(1, 2) != 5 {
		t.Errorf("expected 5, got %f", dataset.Points.At(1, 2))
	}
}

func TestLoadPoints_JSONObjects(t *testing.T) {
	path := writeTempFile(t, "points.json", `[
		{"label": "first", "vector": [1, 2]},
		{"text": "second", "vector": [3, 4]},
		{"vector": [5, 6]}
	]`)

	dataset, err := LoadPoints(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"first", "second", "2"}
	if dataset.Len() != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), dataset.Len())
	}
	for i, label := range want {
		if dataset.Labels[i] != label {
			t.Errorf("label %d: expected %q, got %q", i, label, dataset.Labels[i])
		}
	}
}

func TestLoadPoints_JSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty array", `[]`, ErrEmptyDataset},
		{"mismatched dimensions", `[[1, 2], [3]]`, nil},
		{"missing vector", `[{"label": "a"}]`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, "bad.json", tc.content)
			_, err := LoadPoints(path)
			if err == nil {
				t.Fatalf("expected error for %s", tc.content)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadPoints_UnsupportedExtension(t *testing.T) {
	if _, err := LoadPoints("points.parquet"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadTexts(t *testing.T) {
	csvPath := writeTempFile(t, "texts.csv", "id,Text\n1,hello\n2,\n3,world\n")
	texts, err := LoadTexts(csvPath)
	if err != nil {
		t.Fatalf("csv: unexpected error: %v", err)
	}
	if len(texts) != 2 || texts[0] != "hello" || texts[1] != "world" {
		t.Errorf("csv: unexpected texts %v", texts)
	}

	jsonPath := writeTempFile(t, "texts.json", `[{"text": "alpha"}, {"text": "beta"}]`)
	texts, err = LoadTexts(jsonPath)
	if err != nil {
		t.Fatalf("json: unexpected error: %v", err)
	}
	if len(texts) != 2 || texts[1] != "beta" {
		t.Errorf("json: unexpected texts %v", texts)
	}
}

func TestLoadWithVectors(t *testing.T) {
	path := writeTempFile(t, "vectors.json", `[{"text": "a", "vector": [0.5, 1]}]`)

	entries, err := LoadWithVectors(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "a" || len(entries[0].Vector) != 2 {
		t.Errorf("unexpected entries %+v", entries)
	}

	missing := writeTempFile(t, "missing.json", `[{"text": "a"}]`)
	if _, err := LoadWithVectors(missing); err == nil {
		t.Error("expected error for missing vector")
	}
}
