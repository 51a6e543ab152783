package database

import (
	"context"
	"errors"
	"lifeline/models"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hospitalsSheet = `Hospital Name,Current Vacancies in Emergency Ward,ICU Beds,General Ward,Currently Active Services
City General,4,2,30,"Trauma, Cardiology ,Burns"
Sunrise Clinic,n/a,,12,
,1,1,1,Orphan
`

func TestParseHospitalsCSV(t *testing.T) {
	hospitals, err := ParseHospitalsCSV(strings.NewReader(hospitalsSheet))
	require.NoError(t, err)
	require.Len(t, hospitals, 2)

	assert.Equal(t, "City General", hospitals[0].Name)
	assert.Equal(t, models.HospitalBeds{Emergency: 4, ICU: 2, General: 30}, hospitals[0].Beds)
	assert.Equal(t, []string{"Trauma", "Cardiology", "Burns"}, hospitals[0].Services)

	assert.Equal(t, models.HospitalBeds{General: 12}, hospitals[1].Beds)
	assert.Empty(t, hospitals[1].Services)
}

func TestParseHospitalsCSVMissingColumn(t *testing.T) {
	_, err := ParseHospitalsCSV(strings.NewReader("Name,Beds\nA,1\n"))
	assert.Error(t, err)
}

type recordingUpserter struct {
	saved []string
	fail  string
}

func (r *recordingUpserter) UpsertByName(_ context.Context, h models.Hospital) error {
	if h.Name == r.fail {
		return errors.New("duplicate key")
	}
	r.saved = append(r.saved, h.Name)
	return nil
}

func TestSeedHospitalsSkipsFailedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(hospitalsSheet), 0o600))

	repo := &recordingUpserter{fail: "City General"}
	saved, err := SeedHospitals(context.Background(), repo, path)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Equal(t, []string{"Sunrise Clinic"}, repo.saved)
}

func TestExtractDatabaseName(t *testing.T) {
	assert.Equal(t, "Database3", extractDatabaseName("mongodb+srv://u:p@cluster0.example.net/Database3?retryWrites=true"))
	assert.Equal(t, "lifeline", extractDatabaseName("mongodb://localhost:27017"))
	assert.Equal(t, "lifeline", extractDatabaseName("mongodb://localhost:27017/"))
}
