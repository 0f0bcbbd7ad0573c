package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"voting-settlement/models"
)

// receiptFile represents the whole receipt log on disk
type receiptFile struct {
	Settlements []*models.Settlement `json:"settlements"`
}

// JSONStore keeps the receipt log in a single JSON file, rewritten on every Put.
type JSONStore struct {
	basePath string
	mu       sync.RWMutex
	file     *receiptFile
}

func NewJSONStore(basePath string) (*JSONStore, error) {
	// Create storage directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %v", err)
	}

	store := &JSONStore{basePath: basePath}

	file, err := store.loadFromFile()
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %v", err)
	}
	store.file = file

	return store, nil
}

func (s *JSONStore) path() string {
	return filepath.Join(s.basePath, "settlements.json")
}

func (s *JSONStore) Put(settlement *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *settlement
	s.file.Settlements = append(s.file.Settlements, &copied)

	if err := s.saveToFile(); err != nil {
		s.file.Settlements = s.file.Settlements[:len(s.file.Settlements)-1]
		return err
	}
	return nil
}

func (s *JSONStore) ForProposal(proposalID uint64) ([]*models.Settlement, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	return filterProposal(all, proposalID), nil
}

func (s *JSONStore) List() ([]*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return copies to prevent modification
	out := make([]*models.Settlement, len(s.file.Settlements))
	for i, settlement := range s.file.Settlements {
		copied := *settlement
		out[i] = &copied
	}
	sortBySettledAt(out)
	return out, nil
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) loadFromFile() (*receiptFile, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return &receiptFile{Settlements: make([]*models.Settlement, 0)}, nil
		}
		return nil, err
	}

	var file receiptFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipts: %v", err)
	}
	if file.Settlements == nil {
		file.Settlements = make([]*models.Settlement, 0)
	}

	return &file, nil
}

func (s *JSONStore) saveToFile() error {
	path := s.path()

	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipts: %v", err)
	}

	// Write to temporary file first
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write receipts file: %v", err)
	}

	// Atomic rename to ensure consistency
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // Clean up temp file if rename fails
		return fmt.Errorf("failed to save receipts file: %v", err)
	}

	return nil
}
