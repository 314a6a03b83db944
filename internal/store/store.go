// Package store keeps recordings of played sessions on disk.
//
// Each recording is a directory holding metadata.json (the settings the
// session started with) and frames.csv (one row per painted frame).
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/stickycaps/internal/config"
	"github.com/san-kum/stickycaps/internal/stage"
)

var ErrRecorderClosed = errors.New("store: recorder closed")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Seed      uint64          `json:"seed"`
	Settings  config.Settings `json:"settings"`
}

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Seq           uint64
	At            time.Time
	UpperFraction float64
	Text          string
}

var header = []string{"seq", "at", "upper_fraction", "text"}

// Recorder is a stage surface that appends every frame to a recording.
type Recorder struct {
	ID string

	mu     sync.Mutex
	file   *os.File
	w      *csv.Writer
	closed bool
	frames int
}

// Record starts a new recording. The caller must Close the recorder. On
// failure no partial recording is left behind.
func (s *Store) Record(settings config.Settings, seed uint64) (*Recorder, error) {
	now := s.now()
	runID := fmt.Sprintf("run_%s", now.Format("20060102_150405.000"))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	rec, err := s.startRecording(runDir, runID, now, settings, seed)
	if err != nil {
		os.RemoveAll(runDir)
		return nil, err
	}
	return rec, nil
}

func (s *Store) startRecording(runDir, runID string, now time.Time, settings config.Settings, seed uint64) (*Recorder, error) {
	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Seed:      seed,
		Settings:  settings,
	}
	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return nil, err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}

	file, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(file)
	err = w.Write(header)
	if err == nil {
		w.Flush()
		err = w.Error()
	}
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Recorder{ID: runID, file: file, w: w}, nil
}

func (r *Recorder) Write(f stage.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}

	row := []string{
		strconv.FormatUint(f.Seq, 10),
		f.At.Format(time.RFC3339Nano),
		strconv.FormatFloat(f.Output.UpperFraction(), 'f', 6, 64),
		f.Output.Text(),
	}
	if err := r.w.Write(row); err != nil {
		return err
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *Recorder) Live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Frames is how many frames have been written.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// List returns every readable recording, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads a recording's frames. Malformed rows are skipped.
func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		seq, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, record[1])
		if err != nil {
			continue
		}
		upper, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		frames = append(frames, FrameRecord{Seq: seq, At: at, UpperFraction: upper, Text: record[3]})
	}
	return frames, nil
}
