package repositories

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/users333/faculty-registry/internal/app/models"
	"github.com/users333/faculty-registry/internal/pkg/apperrors"
)

// Minimum field counts for a usable row.
const (
	FacultyFields = 3
	StudentFields = 6
)

// EncodeFaculty renders name,abbreviation,domain.
func EncodeFaculty(f *models.Faculty) string {
	return encodeRecord([]string{f.Name, f.Abbreviation, f.Domain})
}

// EncodeStudent renders surname,given_name,email,birth_date,graduated,faculty_name.
func EncodeStudent(s *models.Student, facultyName string) string {
	return encodeRecord([]string{
		s.Surname,
		s.GivenName,
		s.Email,
		s.BirthDate.String(),
		strconv.FormatBool(s.Graduated),
		facultyName,
	})
}

// DecodeFaculty builds a faculty from a split row. Extra fields are ignored.
func DecodeFaculty(fields []string) (*models.Faculty, error) {
	if len(fields) < FacultyFields {
		return nil, apperrors.NewMalformedRecordError(
			fmt.Sprintf("faculty row has %d fields, want %d", len(fields), FacultyFields))
	}
	return models.NewFaculty(fields[0], fields[1], fields[2]), nil
}

// DecodeStudent builds a student from a split row. The faculty label is
// stored on the student. Extra fields are ignored.
func DecodeStudent(fields []string) (*models.Student, error) {
	if len(fields) < StudentFields {
		return nil, apperrors.NewMalformedRecordError(
			fmt.Sprintf("student row has %d fields, want %d", len(fields), StudentFields))
	}

	birthDate, err := models.ParseDate(fields[3])
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrMalformedRecord, err.Error())
	}

	s := models.NewStudent(fields[0], fields[1], fields[2], birthDate)
	s.Graduated = parseLegacyBool(fields[4])
	s.FacultyName = fields[5]
	return s, nil
}

// SplitRecord splits one stored line. Quoted fields may contain commas.
// A line with unbalanced quotes was never written quoted and is split on
// every comma. Trailing empty fields are dropped before counting, as the
// legacy reader did.
func SplitRecord(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	var fields []string
	if strings.Count(line, `"`)%2 != 0 {
		fields = strings.Split(line, ",")
	} else {
		r := csv.NewReader(strings.NewReader(line))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		var err error
		if fields, err = r.Read(); err != nil {
			return nil, apperrors.NewCustomError(apperrors.ErrMalformedRecord, err.Error())
		}
	}

	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields, nil
}

// parseLegacyBool treats only a case-insensitive "true" as true.
func parseLegacyBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

func encodeRecord(fields []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Writing to a bytes.Buffer cannot fail.
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
