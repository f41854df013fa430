package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Age;Sex;Country_of_birth;Ethnicity;Country_of_residence;Student_status;Employment_status;Extra
34;Female;Turkey;Turkish;Germany;No;Full-time;x
 21 ; Male ;Germany;White;Germany;Yes;Part-time;y
`

func TestParse(t *testing.T) {
	profiles, err := Parse(strings.NewReader(sample), ";")
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, Profile{
		Age:                "34",
		Sex:                "Female",
		CountryOfBirth:     "Turkey",
		Ethnicity:          "Turkish",
		CountryOfResidence: "Germany",
		StudentStatus:      "No",
		EmploymentStatus:   "Full-time",
	}, profiles[0])

	assert.Equal(t, "21", profiles[1].Age)
	assert.Equal(t, "Male", profiles[1].Sex)
}

func TestParse_ColumnOrderIndependent(t *testing.T) {
	in := "Sex,Age,Employment_status,Student_status,Country_of_residence,Ethnicity,Country_of_birth\n" +
		"Female,50,Retired,No,Germany,Polish,Poland\n"

	profiles, err := Parse(strings.NewReader(in), ",")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "50", profiles[0].Age)
	assert.Equal(t, "Poland", profiles[0].CountryOfBirth)
	assert.Equal(t, "Retired", profiles[0].EmploymentStatus)
}

func TestParse_Errors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""), ";")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := Parse(strings.NewReader("Age;Sex\n1;2\n"), ";")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ColCountryOfBirth)
	})

	t.Run("short row", func(t *testing.T) {
		in := "Age;Sex;Country_of_birth;Ethnicity;Country_of_residence;Student_status;Employment_status\n" +
			"1;2;3;4;5;6;7\n" +
			"1;2;3\n"
		_, err := Parse(strings.NewReader(in), ";")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("bad delimiter", func(t *testing.T) {
		_, err := Parse(strings.NewReader(sample), ";;")
		require.Error(t, err)
	})
}

func TestParse_StrayQuoteInField(t *testing.T) {
	in := "Age;Sex;Country_of_birth;Ethnicity;Country_of_residence;Student_status;Employment_status\n" +
		"29;Male;Cote d\"Ivoire;Black;Germany;No;Student\n"

	profiles, err := Parse(strings.NewReader(in), ";")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, `Cote d"Ivoire`, profiles[0].CountryOfBirth)
	assert.Equal(t, "Black", profiles[0].Ethnicity)
}

func TestParse_HeaderOnly(t *testing.T) {
	in := "Age;Sex;Country_of_birth;Ethnicity;Country_of_residence;Student_status;Employment_status\n"
	profiles, err := Parse(strings.NewReader(in), ";")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	profiles, err := Load(path, ";")
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), ";")
	assert.Error(t, err)
}

func TestStudentText(t *testing.T) {
	assert.Equal(t, "You are a student", Profile{StudentStatus: "Yes"}.StudentText())
	assert.Equal(t, "You are not a student", Profile{StudentStatus: "No"}.StudentText())
	assert.Equal(t, "You are not a student", Profile{StudentStatus: "yes"}.StudentText())
	assert.Equal(t, "You are not a student", Profile{}.StudentText())
}

func TestHead(t *testing.T) {
	ps := []Profile{{Age: "1"}, {Age: "2"}, {Age: "3"}}
	assert.Len(t, Head(ps, 5), 3)
	assert.Len(t, Head(ps, 2), 2)
	assert.Empty(t, Head(ps, -1))
}
