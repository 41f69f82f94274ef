// Package dataimport loads point sets and text corpora from CSV and JSON files.
package dataimport

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyDataset is returned when a file parses but holds no rows.
var ErrEmptyDataset = errors.New("dataimport: dataset is empty")

// Dataset is a labeled point set: row i of Points is labeled Labels[i].
type Dataset struct {
	Labels []string
	Points *mat.Dense
}

// Len returns the number of points.
func (d Dataset) Len() int {
	if d.Points == nil {
		return 0
	}
	n, _ := d.Points.Dims()
	return n
}

type TextWithVector struct {
	Text   string
	Vector []float32
}

type jsonTextObject struct {
	Text   string    `json:"text"`
	Label  string    `json:"label,omitempty"`
	Vector []float32 `json:"vector,omitempty"`
}

// LoadPoints reads a numeric point set.
//
// CSV files need a header row. A column named "label" supplies labels and every
// other column must hold numbers. JSON files hold either an array of numeric
// arrays or an array of objects with a "vector" field and an optional "label"
// or "text" field. Rows without a label are labeled by their index.
func LoadPoints(path string) (Dataset, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadPointsCSV(path)
	case ".json":
		return loadPointsJSON(path)
	default:
		return Dataset{}, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

func LoadTexts(path string) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadTextsCSV(path)
	case ".json":
		return loadTextsJSON(path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

func LoadWithVectors(path string) ([]TextWithVector, error) {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return nil, fmt.Errorf("LoadWithVectors only supports JSON files")
	}

	objects, err := readJSONObjects(path)
	if err != nil {
		return nil, err
	}

	results := make([]TextWithVector, 0, len(objects))
	for i, obj := range objects {
		if obj.Text == "" {
			return nil, fmt.Errorf("entry %d missing text field", i)
		}
		if len(obj.Vector) == 0 {
			return nil, fmt.Errorf("entry %d missing vector field", i)
		}
		results = append(results, TextWithVector{Text: obj.Text, Vector: obj.Vector})
	}
	return results, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}
	return records, nil
}

// headerIndex returns the position of name in header, ignoring case and
// surrounding whitespace, or -1.
func headerIndex(header []string, name string) int {
	for i, column := range header {
		if strings.EqualFold(strings.TrimSpace(column), name) {
			return i
		}
	}
	return -1
}

func loadPointsCSV(path string) (Dataset, error) {
	records, err := readCSV(path)
	if err != nil {
		return Dataset{}, err
	}

	header := records[0]
	labelCol := headerIndex(header, "label")
	dims := len(header)
	if labelCol >= 0 {
		dims--
	}
	if dims < 1 {
		return Dataset{}, fmt.Errorf("CSV has no numeric columns")
	}

	rows := records[1:]
	if len(rows) == 0 {
		return Dataset{}, ErrEmptyDataset
	}

	labels := make([]string, len(rows))
	data := make([]float64, 0, len(rows)*dims)
	for r, row := range rows {
		if len(row) != len(header) {
			return Dataset{}, fmt.Errorf("row %d has %d fields, header has %d", r+1, len(row), len(header))
		}
		labels[r] = strconv.Itoa(r)
		for c, field := range row {
			if c == labelCol {
				if field != "" {
					labels[r] = field
				}
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("row %d column %q: %w", r+1, header[c], err)
			}
			data = append(data, value)
		}
	}

	return Dataset{Labels: labels, Points: mat.NewDense(len(rows), dims, data)}, nil
}

func loadPointsJSON(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading JSON file: %w", err)
	}

	var vectors [][]float64
	var labels []string
	if err := json.Unmarshal(raw, &vectors); err != nil {
		var objects []jsonTextObject
		if err := json.Unmarshal(raw, &objects); err != nil {
			return Dataset{}, fmt.Errorf("parsing JSON: expected array of numeric arrays or objects with 'vector' field: %w", err)
		}
		// A failed decode can leave partial rows behind
		vectors = vectors[:0]
		for i, obj := range objects {
			if len(obj.Vector) == 0 {
				return Dataset{}, fmt.Errorf("entry %d missing vector field", i)
			}
			vector := make([]float64, len(obj.Vector))
			for j, v := range obj.Vector {
				vector[j] = float64(v)
			}
			vectors = append(vectors, vector)
			labels = append(labels, firstNonEmpty(obj.Label, obj.Text, strconv.Itoa(i)))
		}
	}

	if len(vectors) == 0 {
		return Dataset{}, ErrEmptyDataset
	}
	if labels == nil {
		labels = make([]string, len(vectors))
		for i := range labels {
			labels[i] = strconv.Itoa(i)
		}
	}

	dims := len(vectors[0])
	if dims == 0 {
		return Dataset{}, fmt.Errorf("entry 0 has no coordinates")
	}
	data := make([]float64, 0, len(vectors)*dims)
	for i, vector := range vectors {
		if len(vector) != dims {
			return Dataset{}, fmt.Errorf("entry %d has dimension %d, want %d", i, len(vector), dims)
		}
		data = append(data, vector...)
	}

	return Dataset{Labels: labels, Points: mat.NewDense(len(vectors), dims, data)}, nil
}

func loadTextsCSV(path string) ([]string, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	textCol := headerIndex(records[0], "text")
	if textCol == -1 {
		return nil, fmt.Errorf("CSV missing 'text' column header")
	}

	texts := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		if textCol < len(row) && row[textCol] != "" {
			texts = append(texts, row[textCol])
		}
	}
	return texts, nil
}

func loadTextsJSON(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading JSON file: %w", err)
	}

	var stringArray []string
	if err := json.Unmarshal(raw, &stringArray); err == nil {
		return stringArray, nil
	}

	objects, err := decodeJSONObjects(raw)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(objects))
	for i, obj := range objects {
		if obj.Text == "" {
			return nil, fmt.Errorf("entry %d missing text field", i)
		}
		texts = append(texts, obj.Text)
	}
	return texts, nil
}

func readJSONObjects(path string) ([]jsonTextObject, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return decodeJSONObjects(raw)
}

func decodeJSONObjects(raw []byte) ([]jsonTextObject, error) {
	var objects []jsonTextObject
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, fmt.Errorf("parsing JSON: expected array of strings or objects with 'text' field: %w", err)
	}
	return objects, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
