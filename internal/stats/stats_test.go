package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spigell/job-digest/internal/serrors"
)

func TestAppendCreatesFileAndDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "stats.jsonl")
	log := NewFileLog(path)

	records, err := log.Records()
	require.NoError(t, err)
	require.Empty(t, records)

	first := NewRecord(time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC), PhaseDigest)
	first.JobsFound = 7
	require.NoError(t, log.Append(first))

	second := NewRecord(time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), PhaseArtifacts)
	second.JobsApproved = 2
	second.ApplicationsGenerated = 2
	second.Issue = 12
	require.NoError(t, log.Append(second))

	records, err = log.Records()
	require.NoError(t, err)
	require.Equal(t, []Record{first, second}, records)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, `{"date":"2025-03-01","jobs_found":7,"jobs_approved":0,"applications_generated":0,"phase":"digest"}`, lines[0])
}

func TestAppendRefusesCorruptLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.jsonl")
	original := `{"date":"2025-03-01","jobs_found":3,"jobs_approved":0,"applications_generated":0}` + "\n" + `{"date":` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	log := NewFileLog(path)
	err := log.Append(NewRecord(time.Now(), PhaseDigest))
	require.ErrorIs(t, err, serrors.ErrPersistence)
	require.Contains(t, err.Error(), "line 2")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, string(data), "corrupt log must be left untouched")

	_, err = log.Records()
	require.ErrorIs(t, err, serrors.ErrPersistence)
}

func TestRecordsRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"bad date":      `{"date":"yesterday","jobs_found":1,"jobs_approved":0,"applications_generated":0}`,
		"negative":      `{"date":"2025-03-01","jobs_found":-1,"jobs_approved":0,"applications_generated":0}`,
		"unknown field": `{"date":"2025-03-01","jobs":1}`,
		"not an object": `[1,2,3]`,
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stats.jsonl")
			require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o644))

			_, err := NewFileLog(path).Records()
			require.ErrorIs(t, err, serrors.ErrPersistence)
		})
	}
}

func TestAppendAfterMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"date":"2025-03-01","jobs_found":1,"jobs_approved":0,"applications_generated":0}`), 0o644))

	log := NewFileLog(path)
	require.NoError(t, log.Append(Record{Date: "2025-03-02", JobsFound: 2}))

	records, err := log.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 2, records[1].JobsFound)
}

func TestAppendRejectsInvalidRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.jsonl")
	err := NewFileLog(path).Append(Record{JobsFound: 1})
	require.ErrorIs(t, err, serrors.ErrPersistence)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Record{
		{Date: "2025-03-02", JobsFound: 5, Phase: PhaseDigest},
		{Date: "2025-03-01", JobsFound: 3, Phase: PhaseDigest},
		{Date: "2025-03-02", JobsApproved: 2, ApplicationsGenerated: 2, Phase: PhaseArtifacts},
	})

	require.Equal(t, 3, s.Runs)
	require.Equal(t, 8, s.JobsFound)
	require.Equal(t, 2, s.JobsApproved)
	require.Equal(t, 2, s.ApplicationsGenerated)
	require.Equal(t, "2025-03-01", s.FirstDate)
	require.Equal(t, "2025-03-02", s.LastDate)
	require.Equal(t, Record{Date: "2025-03-02", JobsFound: 5, JobsApproved: 2, ApplicationsGenerated: 2}, s.ByDate["2025-03-02"])

	empty := Summarize(nil)
	require.Zero(t, empty.Runs)
	require.Empty(t, empty.FirstDate)
}
