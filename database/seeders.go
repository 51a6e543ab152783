package database

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"lifeline/models"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Hospital CSV columns
const (
	colHospitalName = "Hospital Name"
	colEmergency    = "Current Vacancies in Emergency Ward"
	colICU          = "ICU Beds"
	colGeneral      = "General Ward"
	colServices     = "Currently Active Services"
)

// HospitalUpserter is the slice of the hospital repository the importer needs.
type HospitalUpserter interface {
	UpsertByName(ctx context.Context, hospital models.Hospital) error
}

// SeedHospitals imports the bed availability sheet at path. Rows that fail to
// save are logged and skipped; the count of saved rows is returned.
func SeedHospitals(ctx context.Context, repo HospitalUpserter, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open hospitals csv: %w", err)
	}
	defer f.Close()

	hospitals, err := ParseHospitalsCSV(f)
	if err != nil {
		return 0, err
	}

	logrus.Infof("🌱 Importing %d hospitals from %s", len(hospitals), path)

	saved := 0
	for _, h := range hospitals {
		if err := repo.UpsertByName(ctx, h); err != nil {
			logrus.Errorf("❌ Error saving hospital %s: %v", h.Name, err)
			continue
		}
		saved++
	}

	logrus.Infof("✅ Hospital import completed (%d/%d)", saved, len(hospitals))
	return saved, nil
}

// ParseHospitalsCSV reads the sheet by header name. Non-numeric bed counts
// become zero and services are comma separated within their cell.
func ParseHospitalsCSV(r io.Reader) ([]models.Hospital, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read hospitals csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := index[colHospitalName]; !ok {
		return nil, fmt.Errorf("hospitals csv is missing %q column", colHospitalName)
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var hospitals []models.Hospital
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return hospitals, fmt.Errorf("read hospitals csv: %w", err)
		}

		name := cell(row, colHospitalName)
		if name == "" {
			continue
		}

		hospitals = append(hospitals, models.Hospital{
			Name: name,
			Beds: models.HospitalBeds{
				Emergency: atoiOrZero(cell(row, colEmergency)),
				ICU:       atoiOrZero(cell(row, colICU)),
				General:   atoiOrZero(cell(row, colGeneral)),
			},
			Services: splitServices(cell(row, colServices)),
		})
	}

	return hospitals, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func splitServices(s string) []string {
	services := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			services = append(services, part)
		}
	}
	return services
}
