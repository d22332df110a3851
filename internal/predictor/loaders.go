package predictor

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"placementpulse/internal/errors"
	"placementpulse/internal/types"
)

// Dataset sources reported in the model status.
const (
	SourceBuiltin  = "builtin"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Dataset is a set of placement records and where they came from.
type Dataset struct {
	Source  string
	Records []types.PlacementRecord
}

// Loader supplies training data
type Loader interface {
	Load(ctx context.Context) (Dataset, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (Dataset, error)

func (f LoaderFunc) Load(ctx context.Context) (Dataset, error) { return f(ctx) }

// FallbackLoader serves the built-in placement records.
type FallbackLoader struct{}

func (FallbackLoader) Load(context.Context) (Dataset, error) {
	return Dataset{Source: SourceBuiltin, Records: FallbackRecords()}, nil
}

func record(cgpa, hs, ssc, web, ml, cloud, db, other, dsa, intern, pkg, hack, proj float64) types.PlacementRecord {
	return types.PlacementRecord{
		StudentProfile: types.StudentProfile{
			CGPA:            cgpa,
			HighSchoolScore: hs,
			SSCScore:        ssc,
			WebDev:          web,
			MachineLearning: ml,
			CloudComputing:  cloud,
			Database:        db,
			OtherSkills:     other,
			DSACP:           dsa,
			TechInternships: intern,
			Hackathons:      hack,
			Projects:        proj,
		},
		PackageLPA: pkg,
	}
}

// FallbackRecords returns a fresh copy of the built-in records.
func FallbackRecords() []types.PlacementRecord {
	return []types.PlacementRecord{
		record(8.5, 85, 90, 4, 3, 2, 3, 4, 4, 2, 10.5, 3, 4),
		record(9.2, 92, 95, 5, 4, 4, 4, 5, 5, 3, 18.5, 4, 5),
		record(7.8, 76, 82, 3, 2, 1, 2, 3, 2, 1, 7.2, 1, 2),
		record(8.9, 88, 91, 4, 5, 3, 4, 3, 5, 2, 14.0, 3, 4),
		record(6.5, 72, 75, 2, 1, 1, 1, 2, 1, 0, 5.5, 0, 2),
	}
}

// Dataset columns, in the order PostgresLoader selects them.
type column int

const (
	colCGPA column = iota
	colHighSchool
	colSSC
	colWebDev
	colMachineLearning
	colCloud
	colDatabase
	colOtherSkills
	colDSA
	colInternships
	colPackage
	colHackathons
	colProjects
	columnCount
)

// longColumnNames are the column names of the published placement dataset.
var longColumnNames = [columnCount]string{
	colCGPA:            "CGPA/GPA/Degree_score",
	colHighSchool:      "12th_grade/Diploma_score/high_school_score",
	colSSC:             "10th_grade_score/SSC_score",
	colWebDev:          "Web_Devopment",
	colMachineLearning: "Machine_Learning_Experience",
	colCloud:           "Cloud_Computing_Experience",
	colDatabase:        "Database_Experience",
	colOtherSkills:     "Other_Personal_Skills",
	colDSA:             "Data_Structures/Algorithms/Competitive_Programming",
	colInternships:     "No_of_Tech_Internships",
	colPackage:         "Package(in LPA)",
	colHackathons:      "No_of_Hackathon_participation",
	colProjects:        "Number_of_projects_completed",
}

// columnAliases maps lower-cased header names to columns.
var columnAliases = func() map[string]column {
	m := map[string]column{
		"cgpa":                    colCGPA,
		"high_school_score":       colHighSchool,
		"highschoolscore":         colHighSchool,
		"ssc_score":               colSSC,
		"sscscore":                colSSC,
		"web_development":         colWebDev,
		"webdev":                  colWebDev,
		"machinelearning":         colMachineLearning,
		"cloudcomputing":          colCloud,
		"database":                colDatabase,
		"otherskills":             colOtherSkills,
		"dsa_cp":                  colDSA,
		"dsacp":                   colDSA,
		"tech_internships":        colInternships,
		"techinternships":         colInternships,
		"package_lpa":             colPackage,
		"packagelpa":              colPackage,
		"hackathon_participation": colHackathons,
		"hackathons":              colHackathons,
		"projects_completed":      colProjects,
		"projects":                colProjects,
	}
	for c, name := range longColumnNames {
		m[strings.ToLower(name)] = column(c)
	}
	return m
}()

func (c column) set(r *types.PlacementRecord, v float64) {
	switch c {
	case colCGPA:
		r.CGPA = v
	case colHighSchool:
		r.HighSchoolScore = v
	case colSSC:
		r.SSCScore = v
	case colWebDev:
		r.WebDev = v
	case colMachineLearning:
		r.MachineLearning = v
	case colCloud:
		r.CloudComputing = v
	case colDatabase:
		r.Database = v
	case colOtherSkills:
		r.OtherSkills = v
	case colDSA:
		r.DSACP = v
	case colInternships:
		r.TechInternships = v
	case colPackage:
		r.PackageLPA = v
	case colHackathons:
		r.Hackathons = v
	case colProjects:
		r.Projects = v
	}
}

// CSVLoader reads placement records from a CSV file with a header row.
// Headers may use the short field names or the dataset's long column
// names; missing feature columns read as 0, the package column is required.
type CSVLoader struct {
	Path string
}

func (l CSVLoader) Load(ctx context.Context) (Dataset, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dataset{}, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("Dataset file not found: %s", l.Path), err)
		}
		return Dataset{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot open dataset file: %s", l.Path), err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadCSV(ctx, f)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Source: SourceCSV, Records: records}, nil
}

// ReadCSV parses placement records from r.
func ReadCSV(ctx context.Context, r io.Reader) ([]types.PlacementRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "Cannot read dataset header", err)
	}
	cols := make([]column, len(header))
	hasPackage := false
	for i, name := range header {
		c, ok := columnAliases[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))]
		if !ok {
			cols[i] = -1
			continue
		}
		cols[i] = c
		hasPackage = hasPackage || c == colPackage
	}
	if !hasPackage {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Dataset has no package column", nil)
	}

	var records []types.PlacementRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("Malformed dataset row %d", line), err)
		}
		var rec types.PlacementRecord
		for i, field := range fields {
			if i >= len(cols) || cols[i] < 0 {
				continue
			}
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
					fmt.Sprintf("Invalid number %q in dataset row %d", field, line), err).
					WithContext("column", header[i])
			}
			cols[i].set(&rec, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ChainLoader tries each loader in order and returns the first dataset with
// records. When every loader fails or comes back empty it serves the
// built-in records.
type ChainLoader struct {
	Loaders []Loader
	Logger  *errors.Logger
}

func (c ChainLoader) Load(ctx context.Context) (Dataset, error) {
	logger := c.Logger
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	for _, l := range c.Loaders {
		ds, err := l.Load(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Dataset{}, ctxErr
			}
			logger.LogError(err, "Failed to load placement data, trying next source")
			continue
		}
		if len(ds.Records) == 0 {
			logger.Warn("Placement data source returned no records", "source", ds.Source)
			continue
		}
		return ds, nil
	}
	logger.Warn("Using built-in placement data")
	return FallbackLoader{}.Load(ctx)
}
