package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Sanjit42/naming-service/internal/bootstrap"
	"github.com/Sanjit42/naming-service/internal/search"
)

const rosterCSV = "emp_id,display_name,first_name,last_name,batch,dob,gender,thoughtworks_email,personal_email,phone_number,github_username,slack_username,dropbox_username\r\n" +
	"11,Abhi,Abhirup,,2,10-03-2001,male,a@thoughtworks.com,,9338117863,gh11,sl11,db11\r\n" +
	"12,Ravi,Ravi,,3,10-03-2001,female,r@thoughtworks.com,,9338117864,gh12,sl12,db12\r\n" +
	",Nobody,Nobody,,3,10-03-2001,female,,,9338117865,,,"

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SEARCH_BACKEND", "DATASTORE_PROJECT_ID", "NATS_URL", "EXPORT_LAYOUT_FILE", "LOG_FILE_PATH"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, app *bootstrap.App, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New(app)
	cmd.SetArgs(append([]string{"--store", "memory"}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportSearchExport(t *testing.T) {
	isolateEnv(t)
	app := bootstrap.NewApp()

	out, err := run(t, app, rosterCSV, "import", "text")
	require.NoError(t, err, out)
	var res struct {
		TotalRows   int `json:"total_rows"`
		SuccessRows int `json:"success_rows_number"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 2, res.SuccessRows)

	out, err = run(t, app, "", "search", "gh", "--filter", "batch=3")
	require.NoError(t, err, out)
	var interns []struct {
		EmpID int64 `json:"emp_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &interns))
	require.Len(t, interns, 1)
	assert.Equal(t, int64(12), interns[0].EmpID)

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	out, err = run(t, app, "", "export", "--out", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "exported 2 interns")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Interns")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	out, err = run(t, app, "", "runs")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"source": "text"`)
}

func TestImportRejectedHeaderFails(t *testing.T) {
	isolateEnv(t)
	out, err := run(t, bootstrap.NewApp(), "emp_id,shoe_size\r\n1,9", "import", "text")
	require.Error(t, err)
	assert.Contains(t, out, `"invalid_header"`)
	assert.Contains(t, out, "shoe_size")
}

func TestReindexWithoutIndex(t *testing.T) {
	isolateEnv(t)
	_, err := run(t, bootstrap.NewApp(), "", "reindex")
	assert.ErrorContains(t, err, "no search index configured")
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"batch=3", " gender =male", "email=a=b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, search.Filters{"batch": "3", "gender": "male", "email": "a=b@x.com"}, filters)

	_, err = parseFilters([]string{"batch"})
	assert.Error(t, err)
	_, err = parseFilters([]string{"=3"})
	assert.Error(t, err)
}
