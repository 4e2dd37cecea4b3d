package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	filePrefix = "interactions_"
	fileSuffix = ".jsonl"
	dateLayout = "2006-01-02"
)

// MaxLineBytes bounds one encoded record. Longer records are refused on write and
// skipped on read.
const MaxLineBytes = 16 << 20

var ErrRecordTooLarge = errors.New("record exceeds maximum line size")

// DailyRecorder appends records to one JSONL file per calendar day:
// <dir>/interactions_<YYYY-MM-DD>.jsonl, chosen by the record's write-time date.
type DailyRecorder struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

func NewDailyRecorder(dir string) (*DailyRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure log dir: %w", err)
	}
	return &DailyRecorder{dir: dir, now: time.Now}, nil
}

// WithClock replaces the time source; used by tests and replays.
func (r *DailyRecorder) WithClock(now func() time.Time) *DailyRecorder {
	r.now = now
	return r
}

func (r *DailyRecorder) Dir() string { return r.dir }

// FileName returns the partition file name for the date of t.
func FileName(t time.Time) string {
	return filePrefix + t.Format(dateLayout) + fileSuffix
}

// Record stamps and appends a new interaction. A non-nil userEdit marks it as edited.
func (r *DailyRecorder) Record(customerMessage, aiReply string, settings Settings, userEdit *string) (Record, error) {
	rec := Record{
		ID:              uuid.NewString(),
		Timestamp:       r.now(),
		CustomerMessage: customerMessage,
		AIReply:         aiReply,
		Settings:        settings,
		UserEdit:        userEdit,
		Edited:          userEdit != nil,
	}
	if err := r.AppendInteraction(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *DailyRecorder) AppendInteraction(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	line = append(line, '\n')
	if len(line) > MaxLineBytes {
		return fmt.Errorf("encode record: %w", ErrRecordTooLarge)
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	path := filepath.Join(r.dir, FileName(ts))

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	// One Write per record keeps lines whole even for appenders in other processes.
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func (r *DailyRecorder) LoadInteractions() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return LoadDir(r.dir)
}

// PartitionFiles lists the daily log files in dir in chronological order.
// A missing directory yields no files and no error.
func PartitionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir reads every daily partition in dir. Blank and malformed lines are skipped.
func LoadDir(dir string) ([]Record, error) {
	files, err := PartitionFiles(dir)
	if err != nil {
		return nil, err
	}
	records := []Record{}
	for _, path := range files {
		recs, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func loadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReaderSize(f, 64*1024)
	var (
		records  []Record
		line     []byte
		oversize bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !oversize {
			if len(line)+len(chunk) > MaxLineBytes {
				oversize = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if !oversize {
			if rec, ok := decodeLine(line); ok {
				records = append(records, rec)
			}
		}
		line, oversize = line[:0], false

		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
	}
}

func decodeLine(line []byte) (Record, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, false
	}
	return rec, true
}
