package fuel

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// ReadCSV reads fuel records from CSV. The header row names the record keys
// (resourceName, resourceAbbr, halflife, pep, density); values stay untyped
// so that Build applies the same validation as for any other source.
func ReadCSV(r io.Reader) ([]Record, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("reading fuel csv: %w", err)
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record(row)
	}
	return records, nil
}

// ReadCSVFile is ReadCSV on a file path.
func ReadCSVFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fuel csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
