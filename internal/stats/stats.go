// Package stats keeps the append-only JSON-lines log of digest runs.
package stats

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/spigell/job-digest/internal/serrors"
)

const (
	PhaseDigest    = "digest"
	PhaseArtifacts = "artifacts"
)

// Record is one run entry. Entries are never rewritten.
type Record struct {
	Date                  string `json:"date"`
	JobsFound             int    `json:"jobs_found"`
	JobsFetched           int    `json:"jobs_fetched,omitempty"`
	JobsApproved          int    `json:"jobs_approved"`
	ApplicationsGenerated int    `json:"applications_generated"`
	Phase                 string `json:"phase,omitempty"`
	RunID                 string `json:"run_id,omitempty"`
	Issue                 int    `json:"issue,omitempty"`
}

// Log is the narrow read/append view of the stats store.
type Log interface {
	Records() ([]Record, error)
	Append(r Record) error
}

// FileLog stores records one JSON object per line. Appends hold an exclusive
// lock on Path + ".lock".
type FileLog struct {
	Path string
}

func NewFileLog(path string) *FileLog {
	return &FileLog{Path: path}
}

// NewRecord stamps a record with the UTC date of t.
func NewRecord(t time.Time, phase string) Record {
	return Record{Date: t.UTC().Format(time.DateOnly), Phase: phase}
}

// Records reads and validates the whole log. A missing file is an empty log.
func (l *FileLog) Records() ([]Record, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, serrors.Wrap(serrors.ErrPersistence, err, "opening stats log")
	}
	defer file.Close()

	return readRecords(file, l.Path)
}

// Append validates every existing line and then writes r at the end of the
// log. Nothing is written when the log is corrupt.
func (l *FileLog) Append(r Record) error {
	if err := r.validate(); err != nil {
		return serrors.Wrap(serrors.ErrPersistence, err, "invalid stats record")
	}

	if dir := filepath.Dir(l.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return serrors.Wrap(serrors.ErrPersistence, err, "creating stats directory")
		}
	}

	lock := flock.New(l.Path + ".lock")
	if err := lock.Lock(); err != nil {
		return serrors.Wrap(serrors.ErrPersistence, err, "locking stats log")
	}
	defer lock.Unlock()

	file, err := os.OpenFile(l.Path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return serrors.Wrap(serrors.ErrPersistence, err, "opening stats log")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return serrors.Wrap(serrors.ErrPersistence, err, "reading stats log")
	}
	if _, err := readRecords(bytes.NewReader(data), l.Path); err != nil {
		return err
	}

	line, err := json.Marshal(r)
	if err != nil {
		return serrors.Wrap(serrors.ErrPersistence, err, "encoding stats record")
	}
	// a log written by hand may lack the final newline
	if len(data) > 0 && data[len(data)-1] != '\n' {
		line = append([]byte{'\n'}, line...)
	}
	line = append(line, '\n')

	if _, err := file.Write(line); err != nil {
		return serrors.Wrap(serrors.ErrPersistence, err, "appending stats record")
	}

	return file.Sync()
}

func readRecords(r io.Reader, path string) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec Record
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return nil, serrors.Wrap(serrors.ErrPersistence, err, "%s line %d is corrupt", path, n)
		}
		if err := rec.validate(); err != nil {
			return nil, serrors.Wrap(serrors.ErrPersistence, err, "%s line %d is corrupt", path, n)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, serrors.Wrap(serrors.ErrPersistence, err, "reading %s", path)
	}

	return records, nil
}

func (r Record) validate() error {
	if _, err := time.Parse(time.DateOnly, r.Date); err != nil {
		return fmt.Errorf("date %q: %w", r.Date, err)
	}
	if r.JobsFound < 0 || r.JobsFetched < 0 || r.JobsApproved < 0 || r.ApplicationsGenerated < 0 {
		return fmt.Errorf("negative counter")
	}
	return nil
}
