package projection

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one row per point: label, cluster, x0 .. x{d-1}.
func WriteCSV(w io.Writer, points []Point) error {
	writer := csv.NewWriter(w)

	dimensions := 0
	if len(points) > 0 {
		dimensions = len(points[0].Coordinates)
	}
	header := []string{"label", "cluster"}
	for c := 0; c < dimensions; c++ {
		header = append(header, "x"+strconv.Itoa(c))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for i, point := range points {
		if len(point.Coordinates) != dimensions {
			return fmt.Errorf("point %d has %d coordinates, want %d", i, len(point.Coordinates), dimensions)
		}
		record[0] = point.Label
		record[1] = strconv.Itoa(point.Cluster)
		for c, v := range point.Coordinates {
			record[2+c] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write point %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the points as an indented JSON array.
func WriteJSON(w io.Writer, points []Point) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(points)
}
