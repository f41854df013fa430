package profile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	ColAge                = "Age"
	ColSex                = "Sex"
	ColCountryOfBirth     = "Country_of_birth"
	ColEthnicity          = "Ethnicity"
	ColCountryOfResidence = "Country_of_residence"
	ColStudentStatus      = "Student_status"
	ColEmploymentStatus   = "Employment_status"
)

var requiredColumns = []string{
	ColAge,
	ColSex,
	ColCountryOfBirth,
	ColEthnicity,
	ColCountryOfResidence,
	ColStudentStatus,
	ColEmploymentStatus,
}

// Profile is one synthetic respondent.
type Profile struct {
	Age                string
	Sex                string
	CountryOfBirth     string
	Ethnicity          string
	CountryOfResidence string
	StudentStatus      string
	EmploymentStatus   string
}

func (p Profile) StudentText() string {
	if p.StudentStatus == "Yes" {
		return "You are a student"
	}
	return "You are not a student"
}

func (p Profile) String() string {
	return fmt.Sprintf(
		"age=%s sex=%s country_of_birth=%s ethnicity=%s country=%s student=%s work=%s",
		p.Age, p.Sex, p.CountryOfBirth, p.Ethnicity, p.CountryOfResidence, p.StudentStatus, p.EmploymentStatus,
	)
}

// Load reads respondent profiles from a delimited file with a header line.
func Load(path, delimiter string) ([]Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()

	return Parse(f, delimiter)
}

func Parse(r io.Reader, delimiter string) ([]Profile, error) {
	comma, size := utf8.DecodeRuneInString(delimiter)
	if comma == utf8.RuneError || size != len(delimiter) {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("profiles file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var out []Profile
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		get := func(col string) (string, error) {
			i := index[col]
			if i >= len(rec) {
				return "", fmt.Errorf("line %d: row has %d fields, column %q needs %d", line, len(rec), col, i+1)
			}
			return strings.TrimSpace(rec[i]), nil
		}

		var p Profile
		fields := []struct {
			col string
			dst *string
		}{
			{ColAge, &p.Age},
			{ColSex, &p.Sex},
			{ColCountryOfBirth, &p.CountryOfBirth},
			{ColEthnicity, &p.Ethnicity},
			{ColCountryOfResidence, &p.CountryOfResidence},
			{ColStudentStatus, &p.StudentStatus},
			{ColEmploymentStatus, &p.EmploymentStatus},
		}
		for _, f := range fields {
			v, err := get(f.col)
			if err != nil {
				return nil, err
			}
			*f.dst = v
		}
		out = append(out, p)
	}

	return out, nil
}

// Head returns at most n leading profiles.
func Head(profiles []Profile, n int) []Profile {
	if n < 0 {
		n = 0
	}
	if len(profiles) < n {
		n = len(profiles)
	}
	return profiles[:n]
}
