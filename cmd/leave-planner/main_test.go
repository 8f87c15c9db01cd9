package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()

	content := fmt.Sprintf(`planner:
  year: 2026
  region: england-wales
storage:
  backend: file
  path: %s
log:
  file: %s
  level: debug
%s`, filepath.Join(dir, "plan.json"), filepath.Join(dir, "planner.log"), extra)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ApplyPersistsAcrossRuns(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "apply", "easter-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Leave days:      4")

	out, err = run(t, cfg, "streaks")
	require.NoError(t, err)
	assert.Contains(t, out, "Longest streak: 8 days")
	assert.Contains(t, out, "Wed 01 Apr 2026")
}

func TestCLI_ChristmasStreakFollowsLookaheadHolidays(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := run(t, cfg, "apply", "christmas-10")
	require.NoError(t, err)

	out, err := run(t, cfg, "streaks")
	require.NoError(t, err)
	assert.Contains(t, out, "Longest streak: 7 days")

	t.Setenv("LEAVE_PLANNER_PLANNER_LOOKAHEAD_HOLIDAYS", "true")
	out, err = run(t, cfg, "streaks")
	require.NoError(t, err)
	assert.Contains(t, out, "Longest streak: 10 days")
}

func TestCLI_DragAddsThenRemoves(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "drag", "2026-04-01", "2026-04-08")
	require.NoError(t, err)
	assert.Contains(t, out, "Range 2026-04-01 .. 2026-04-08: add")
	assert.Contains(t, out, "Leave days:      4")

	out, err = run(t, cfg, "drag", "2026-04-08", "2026-04-01")
	require.NoError(t, err)
	assert.Contains(t, out, "remove")
	assert.Contains(t, out, "Leave days:      0")
}

func TestCLI_DragFromHolidayFails(t *testing.T) {
	cfg := writeConfig(t, "")

	_, err := run(t, cfg, "drag", "2026-12-25", "2026-12-31")
	assert.Error(t, err)

	_, err = run(t, cfg, "drag", "2026-13-01", "2026-12-31")
	assert.Error(t, err)
}

func TestCLI_Toggle(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "toggle", "2026-06-01", "2026-06-06")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-06-06 skipped")
	assert.Contains(t, out, "Leave days:      1")

	out, err = run(t, cfg, "toggle", "2026-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Leave days:      0")
}

func TestCLI_SaveClearLoad(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved plan found.")

	_, err = run(t, cfg, "toggle", "2026-06-01")
	require.NoError(t, err)

	out, err = run(t, cfg, "save")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan Saved Locally!")

	out, err = run(t, cfg, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "All leave cleared.")

	out, err = run(t, cfg, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan Loaded!")
	assert.Contains(t, out, "Leave days:      1")
}

func TestCLI_ShowMonth(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "show", "--month", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "April 2026")
	assert.Contains(t, out, "Legend:")

	_, err = run(t, cfg, "show", "--month", "13")
	assert.Error(t, err)
}

func TestCLI_StrategiesByRegion(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "--region", "scotland", "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "Suggestions for Scotland 2026")

	_, err = run(t, cfg, "--region", "wales", "strategies")
	assert.Error(t, err)
}

func TestCLI_HolidaysList(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := run(t, cfg, "--region", "scotland", "holidays", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "St Andrew's Day")
	assert.NotContains(t, out, "2027-01-01")
}

const feedFixture = `{
  "england-and-wales": {"division": "england-and-wales", "events": [
    {"title": "New Year’s Day", "date": "2027-01-01", "notes": "", "bunting": true},
    {"title": "Boxing Day", "date": "2026-12-28", "notes": "Substitute day", "bunting": true}
  ]},
  "scotland": {"division": "scotland", "events": [
    {"title": "2nd January", "date": "2027-01-04", "notes": "Substitute day", "bunting": true}
  ]},
  "northern-ireland": {"division": "northern-ireland", "events": []}
}`

func TestCLI_HolidaysFetch(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedFixture))
	}))
	defer feed.Close()

	cfg := writeConfig(t, "calendar:\n  source_url: "+feed.URL+"\n")
	output := filepath.Join(t.TempDir(), "holidays.txt")

	out, err := run(t, cfg, "holidays", "fetch", "--year", "2027", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 holidays")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "# date region name\n"+
		"2027-01-01 england-wales New Year’s Day\n"+
		"2027-01-04 scotland 2nd January (Substitute)\n", string(data))
}

func TestCLI_HolidayOverrides(t *testing.T) {
	dir := t.TempDir()
	overrides := filepath.Join(dir, "holidays.txt")
	require.NoError(t, os.WriteFile(overrides, []byte("2026-06-01 england-wales Extra Day\n"), 0o644))

	cfg := writeConfig(t, "calendar:\n  holidays_file: "+overrides+"\n")

	out, err := run(t, cfg, "holidays", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Extra Day")
	assert.Contains(t, out, "Good Friday")
}
