package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteCSV writes frames with a header row.
func WriteCSV(w io.Writer, frames []Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(frameHeader); err != nil {
		return err
	}
	for i, f := range frames {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(f.Timestamp, 'f', 3, 64),
			strconv.FormatFloat(f.Delta, 'f', 3, 64),
			strconv.FormatFloat(f.WallMs, 'f', 4, 64),
			strconv.FormatFloat(f.Energy, 'f', 6, 64),
			strconv.Itoa(f.Lines),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// Export writes a run to path, as CSV when the extension is .csv and JSON
// otherwise. An empty path or "-" writes JSON to stdout.
func Export(path string, run *Run) error {
	if path == "" || path == "-" {
		return WriteJSON(os.Stdout, run)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return WriteCSV(file, run.Samples)
	}
	return WriteJSON(file, run)
}
