package predictor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"placementpulse/internal/errors"
	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackLoader(t *testing.T) {
	ds, err := FallbackLoader{}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceBuiltin, ds.Source)
	require.Len(t, ds.Records, 5)
	assert.Equal(t, 9.2, ds.Records[1].CGPA)
	assert.Equal(t, 18.5, ds.Records[1].PackageLPA)
	assert.Equal(t, 0.0, ds.Records[4].TechInternships)

	ds.Records[0].CGPA = 1
	again, _ := FallbackLoader{}.Load(context.Background())
	assert.Equal(t, 8.5, again.Records[0].CGPA)
}

func TestReadCSVHeaders(t *testing.T) {
	want := types.PlacementRecord{
		StudentProfile: types.StudentProfile{
			CGPA: 8.5, HighSchoolScore: 85, SSCScore: 90, WebDev: 4, MachineLearning: 3,
			CloudComputing: 2, Database: 3, OtherSkills: 4, DSACP: 4, TechInternships: 2,
			Hackathons: 3, Projects: 4,
		},
		PackageLPA: 10.5,
	}
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "long dataset names",
			csv: "CGPA/GPA/Degree_score,12th_grade/Diploma_score/high_school_score,10th_grade_score/SSC_score," +
				"Web_Devopment,Machine_Learning_Experience,Cloud_Computing_Experience,Database_Experience," +
				"Other_Personal_Skills,Data_Structures/Algorithms/Competitive_Programming,No_of_Tech_Internships," +
				"Package(in LPA),No_of_Hackathon_participation,Number_of_projects_completed\n" +
				"8.5,85,90,4,3,2,3,4,4,2,10.5,3,4\n",
		},
		{
			name: "short names in any order",
			csv: "packageLPA,cgpa,highSchoolScore,sscScore,webDev,machineLearning,cloudComputing,database," +
				"otherSkills,dsaCP,techInternships,hackathons,projects\n" +
				"10.5,8.5,85,90,4,3,2,3,4,4,2,3,4\n",
		},
		{
			name: "record field names",
			csv: "CGPA,high_school_score,SSC_score,Web_Development,Machine_Learning_Experience," +
				"Cloud_Computing_Experience,Database_Experience,Other_Personal_Skills,DSA_CP,Tech_Internships," +
				"Package_LPA,Hackathon_participation,Projects_completed\n" +
				"8.5, 85, 90, 4, 3, 2, 3, 4, 4, 2, 10.5, 3, 4\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ReadCSV(context.Background(), strings.NewReader(tt.csv))
			require.NoError(t, err)
			assert.Equal(t, []types.PlacementRecord{want}, records)
		})
	}
}

func TestReadCSVMissingAndUnknownColumns(t *testing.T) {
	records, err := ReadCSV(context.Background(), strings.NewReader("name,cgpa,packageLPA\nasha,9.1,\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 9.1, records[0].CGPA)
	assert.Equal(t, 0.0, records[0].PackageLPA)
	assert.Equal(t, 0.0, records[0].Projects)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"no package column", "cgpa,projects\n8,2\n"},
		{"bad number", "cgpa,packageLPA\neight,10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
		})
	}

	records, err := ReadCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCSVLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placements.csv")
	require.NoError(t, os.WriteFile(path, []byte("cgpa,packageLPA\n8,10\n9,14\n"), 0o600))

	ds, err := CSVLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, ds.Source)
	assert.Len(t, ds.Records, 2)

	_, err = CSVLoader{Path: filepath.Join(t.TempDir(), "missing.csv")}.Load(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestChainLoader(t *testing.T) {
	failing := LoaderFunc(func(context.Context) (Dataset, error) { return Dataset{}, fmt.Errorf("unreachable") })
	empty := LoaderFunc(func(context.Context) (Dataset, error) { return Dataset{Source: SourceCSV}, nil })
	one := LoaderFunc(func(context.Context) (Dataset, error) {
		return Dataset{Source: SourcePostgres, Records: []types.PlacementRecord{{PackageLPA: 12}}}, nil
	})

	tests := []struct {
		name    string
		loaders []Loader
		source  string
		records int
	}{
		{"first with records wins", []Loader{failing, empty, one}, SourcePostgres, 1},
		{"all fail", []Loader{failing, empty}, SourceBuiltin, 5},
		{"no loaders", nil, SourceBuiltin, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ChainLoader{Loaders: tt.loaders}.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.source, ds.Source)
			assert.Len(t, ds.Records, tt.records)
		})
	}
}

func TestChainLoaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	failing := LoaderFunc(func(ctx context.Context) (Dataset, error) { return Dataset{}, ctx.Err() })
	_, err := ChainLoader{Loaders: []Loader{failing}}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostgresQuery(t *testing.T) {
	q := NewPostgresLoader(nil, "").query()
	assert.True(t, strings.HasPrefix(q, `SELECT COALESCE("CGPA/GPA/Degree_score"::float8, 0), `))
	assert.Contains(t, q, `COALESCE("Package(in LPA)"::float8, 0)`)
	assert.True(t, strings.HasSuffix(q, ` FROM "placement_records"`))

	q = NewPostgresLoader(nil, "analytics.Dataset").query()
	assert.True(t, strings.HasSuffix(q, ` FROM "analytics"."Dataset"`))
}
