package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/valter-silva-au/swarm/pkg/models"
)

// Default file names of the two datasets inside the data directory.
const (
	TasksFile = "tasks.csv"
	CardsFile = "cards.csv"
)

// Source is a tabular input: a file on disk, or an uploaded byte stream when
// Data is non-nil. Name is the path for files and a label for uploads.
type Source struct {
	Name string
	Data []byte
}

// FileSource returns a Source read from path.
func FileSource(path string) Source {
	return Source{Name: path}
}

// BytesSource returns a Source backed by an in-memory upload.
func BytesSource(name string, data []byte) Source {
	if data == nil {
		data = []byte{}
	}
	return Source{Name: name, Data: data}
}

// identity returns the memoization key of a source: the content hash for
// uploads, and the absolute path plus size and mtime for files, so that an
// overwritten file is parsed again.
func (s Source) identity() (string, error) {
	if s.Data != nil {
		sum := sha256.Sum256(s.Data)
		return "sha256:" + hex.EncodeToString(sum[:]), nil
	}
	abs, err := filepath.Abs(s.Name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", abs)
	}
	return fmt.Sprintf("file:%s:%d:%d", abs, info.Size(), info.ModTime().UnixNano()), nil
}

func (s Source) bytes() ([]byte, error) {
	if s.Data != nil {
		return s.Data, nil
	}
	return os.ReadFile(s.Name)
}

// DatasetStore loads the task and card tables and replaces their backing
// files. Loaded tables are shared and must be treated as read-only.
type DatasetStore interface {
	Load(tasks, cards Source) (*models.TaskTable, *models.CardTable, error)
	LoadTasks(src Source) (*models.TaskTable, error)
	LoadCards(src Source) (*models.CardTable, error)
	// LoadDefault loads tasks.csv and cards.csv from the data directory.
	LoadDefault() (*models.TaskTable, *models.CardTable, error)
	// Replace validates the given uploads and overwrites the matching
	// backing files. A nil source leaves that file untouched.
	Replace(tasks, cards *Source) error
	TasksPath() string
	CardsPath() string
}

type fileDatasetStore struct {
	dataDir string

	mu    sync.Mutex
	tasks map[string]*models.TaskTable
	cards map[string]*models.CardTable
}

// NewDatasetStore creates a DatasetStore rooted at dataDir.
func NewDatasetStore(dataDir string) DatasetStore {
	return &fileDatasetStore{
		dataDir: dataDir,
		tasks:   make(map[string]*models.TaskTable),
		cards:   make(map[string]*models.CardTable),
	}
}

func (s *fileDatasetStore) TasksPath() string { return filepath.Join(s.dataDir, TasksFile) }
func (s *fileDatasetStore) CardsPath() string { return filepath.Join(s.dataDir, CardsFile) }

func (s *fileDatasetStore) Load(tasks, cards Source) (*models.TaskTable, *models.CardTable, error) {
	tt, err := s.LoadTasks(tasks)
	if err != nil {
		return nil, nil, err
	}
	ct, err := s.LoadCards(cards)
	if err != nil {
		return nil, nil, err
	}
	return tt, ct, nil
}

func (s *fileDatasetStore) LoadDefault() (*models.TaskTable, *models.CardTable, error) {
	return s.Load(FileSource(s.TasksPath()), FileSource(s.CardsPath()))
}

func (s *fileDatasetStore) LoadTasks(src Source) (*models.TaskTable, error) {
	key, err := src.identity()
	if err != nil {
		return nil, &LoadError{Source: src.Name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tt, ok := s.tasks[key]; ok {
		return tt, nil
	}

	data, err := src.bytes()
	if err != nil {
		return nil, &LoadError{Source: src.Name, Err: err}
	}
	tt, err := ReadTasks(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: src.Name, Err: err}
	}
	s.tasks[key] = tt
	return tt, nil
}

func (s *fileDatasetStore) LoadCards(src Source) (*models.CardTable, error) {
	key, err := src.identity()
	if err != nil {
		return nil, &LoadError{Source: src.Name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ct, ok := s.cards[key]; ok {
		return ct, nil
	}

	data, err := src.bytes()
	if err != nil {
		return nil, &LoadError{Source: src.Name, Err: err}
	}
	ct, err := ReadCards(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: src.Name, Err: err}
	}
	s.cards[key] = ct
	return ct, nil
}

func (s *fileDatasetStore) Replace(tasks, cards *Source) error {
	if tasks == nil && cards == nil {
		return fmt.Errorf("replacing dataset: no tables given")
	}

	// Validate both uploads before touching either file.
	var taskData, cardData []byte
	if tasks != nil {
		data, err := tasks.bytes()
		if err != nil {
			return &LoadError{Source: tasks.Name, Err: err}
		}
		if _, err := ReadTasks(bytes.NewReader(data)); err != nil {
			return &LoadError{Source: tasks.Name, Err: err}
		}
		taskData = data
	}
	if cards != nil {
		data, err := cards.bytes()
		if err != nil {
			return &LoadError{Source: cards.Name, Err: err}
		}
		if _, err := ReadCards(bytes.NewReader(data)); err != nil {
			return &LoadError{Source: cards.Name, Err: err}
		}
		cardData = data
	}

	if err := os.MkdirAll(s.dataDir, 0o750); err != nil {
		return fmt.Errorf("replacing dataset: creating directory: %w", err)
	}
	if taskData != nil {
		if err := writeFileAtomic(s.TasksPath(), taskData, 0o644); err != nil {
			return fmt.Errorf("replacing %s: %w", TasksFile, err)
		}
	}
	if cardData != nil {
		if err := writeFileAtomic(s.CardsPath(), cardData, 0o644); err != nil {
			return fmt.Errorf("replacing %s: %w", CardsFile, err)
		}
	}

	s.mu.Lock()
	s.tasks = make(map[string]*models.TaskTable)
	s.cards = make(map[string]*models.CardTable)
	s.mu.Unlock()
	return nil
}
