//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/county-imes/imes-migrate/internal/config"
)

var adpSource = [][]string{
	{"Programme Name: Water and Sanitation Services"},
	{"Capital and non-Capital projects for the FY 2025/26- Water, Environment and Climate Change."},
	{""},
	{"Project name and Location (Ward/Sub county/ county wide)", "Description of activities", "Green Economy consideration", "Estimated Cost", "Source of funds", "Time frame", "Targets"},
	{"Borehole drilling - Kondele", "Drill and equip", "Solar pump", "5,000,000", "CGK", "2025-2026", "1 borehole"},
	{"Water pan rehabilitation", "Desilting in Kajulu", "", "2,000,000", "CGK", "", "1 pan"},
	{"Countywide water kiosks", "Construct kiosks", "", "9,000,000", "Donor", "2025-2027", "10 kiosks"},
}

var adpTemplate = [][]string{
	{"Project_ref", "Department", "Program", "Project name and Location (Ward/Sub county/ county wide)", "Status"},
}

func setADPFlags(t *testing.T, source, template, output string) {
	t.Helper()
	old := adpFlags
	adpFlags.source, adpFlags.template, adpFlags.output = source, template, output
	t.Cleanup(func() { adpFlags = old })
}

func readOutput(t *testing.T, path string) []map[string]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	var out []map[string]string
	for _, r := range rows[1:] {
		m := make(map[string]string, len(rows[0]))
		for i, h := range rows[0] {
			if i < len(r) {
				m[h] = r[i]
			}
		}
		out = append(out, m)
	}
	return out
}

func TestADPCmd_EndToEnd(t *testing.T) {
	cfg = testConfig(newTestStore(t))
	cfg.ADP.DefaultTimeframe = "2025_26"

	source := writeWorkbook(t, "ADP.xlsx", testSheet{name: "Water", rows: adpSource})
	template := writeWorkbook(t, "template.xlsx", testSheet{name: "Sheet1", rows: adpTemplate})
	output := filepath.Join(t.TempDir(), "out", "adp_mapping.xlsx")
	setADPFlags(t, source, template, output)

	adpCmd.SetContext(context.Background())
	defer adpCmd.SetContext(context.TODO())

	require.NoError(t, adpCmd.RunE(adpCmd, nil))

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	header, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	f.Close()
	assert.Equal(t, adpTemplate[0], header[0][:len(adpTemplate[0])])
	assert.Contains(t, header[0], "db_department")

	rows := readOutput(t, output)
	require.Len(t, rows, 3)

	assert.Equal(t, "WAS-BORE-2526-001", rows[0]["Project_ref"])
	assert.Equal(t, "KONDELE", rows[0]["ward"])
	assert.Equal(t, "KISUMU CENTRAL", rows[0]["Subcounty"])
	assert.Equal(t, "Water, Environment, Natural Resources and Climate Change", rows[0]["db_department"])

	assert.Equal(t, "WAS-WATE-2025_26-002", rows[1]["Project_ref"])
	assert.Equal(t, "KAJULU", rows[1]["ward"])
	assert.Equal(t, "KISUMU EAST", rows[1]["Subcounty"])

	assert.Equal(t, "CountyWide", rows[2]["ward"])
	assert.Equal(t, "CountyWide", rows[2]["Subcounty"])
}

func TestADPCmd_MissingSource(t *testing.T) {
	cfg = testConfig(newTestStore(t))
	setADPFlags(t, filepath.Join(t.TempDir(), "missing.xlsx"), "", "")
	cfg.ADP.Template = "unused.xls"
	cfg.ADP.Output = "out.xlsx"

	adpCmd.SetContext(context.Background())
	defer adpCmd.SetContext(context.TODO())

	err := adpCmd.RunE(adpCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adp source not found")
}

func TestADPCmd_MissingTemplate(t *testing.T) {
	cfg = testConfig(newTestStore(t))
	source := writeWorkbook(t, "ADP.xlsx", testSheet{name: "Water", rows: adpSource})
	setADPFlags(t, source, filepath.Join(t.TempDir(), "missing.xls"), filepath.Join(t.TempDir(), "out.xlsx"))

	adpCmd.SetContext(context.Background())
	defer adpCmd.SetContext(context.TODO())

	err := adpCmd.RunE(adpCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adp template not found")
}

func TestADPCmd_InvalidConfig(t *testing.T) {
	cfg = &config.Config{}
	setADPFlags(t, "", "", "")

	err := adpCmd.RunE(adpCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adp.source is required")
	assert.Contains(t, err.Error(), "store: no data source configured")
}
