package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

// fileData is the on-disk layout of a FileStore
type fileData struct {
	RSVPs  []models.RSVP `json:"rsvps"`
	Wishes []models.Wish `json:"wishes"`
}

// FileStore keeps both collections in one JSON document. It suits a single
// process; every mutation rewrites the file.
type FileStore struct {
	mu   sync.RWMutex
	data fileData
	file string
	log  zerolog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by filePath. An empty path keeps data
// in memory only.
func NewFileStore(filePath string, log zerolog.Logger) (*FileStore, error) {
	s := &FileStore{
		file: filePath,
		log:  log,
	}

	// Load existing data if file exists
	if filePath != "" {
		if _, err := os.Stat(filePath); err == nil {
			if err := s.load(); err != nil {
				return nil, fmt.Errorf("failed to load storage: %w", err)
			}
		}
	}

	s.log.Info().
		Str("file", filePath).
		Int("rsvps", len(s.data.RSVPs)).
		Int("wishes", len(s.data.Wishes)).
		Msg("file store ready")
	return s, nil
}

func (s *FileStore) InsertRSVP(_ context.Context, rsvp *models.RSVP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phoneTaken(rsvp.Phone, "") {
		return ErrDuplicatePhone
	}

	rsvp.ID = uuid.NewString()
	s.data.RSVPs = append(s.data.RSVPs, *rsvp)
	if err := s.save(); err != nil {
		s.data.RSVPs = s.data.RSVPs[:len(s.data.RSVPs)-1]
		return err
	}
	return nil
}

func (s *FileStore) ListRSVPs(_ context.Context, attendance models.Attendance) ([]models.RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.RSVP, 0, len(s.data.RSVPs))
	for i := len(s.data.RSVPs) - 1; i >= 0; i-- {
		r := s.data.RSVPs[i]
		if attendance != "" && r.Attendance != attendance {
			continue
		}
		result = append(result, r)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *FileStore) GetRSVP(_ context.Context, id string) (*models.RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOfRSVP(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	r := s.data.RSVPs[i]
	return &r, nil
}

func (s *FileStore) ReplaceRSVP(_ context.Context, rsvp *models.RSVP) (*models.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfRSVP(rsvp.ID)
	if i < 0 {
		return nil, ErrNotFound
	}
	if s.phoneTaken(rsvp.Phone, rsvp.ID) {
		return nil, ErrDuplicatePhone
	}

	prev := s.data.RSVPs[i]
	updated := *rsvp
	updated.CreatedAt = prev.CreatedAt
	s.data.RSVPs[i] = updated
	if err := s.save(); err != nil {
		s.data.RSVPs[i] = prev
		return nil, err
	}
	return &updated, nil
}

func (s *FileStore) DeleteRSVP(_ context.Context, id string) (*models.RSVP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfRSVP(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	prev := s.data.RSVPs
	deleted := prev[i]
	rest := make([]models.RSVP, 0, len(prev)-1)
	rest = append(rest, prev[:i]...)
	rest = append(rest, prev[i+1:]...)
	s.data.RSVPs = rest
	if err := s.save(); err != nil {
		s.data.RSVPs = prev
		return nil, err
	}
	return &deleted, nil
}

func (s *FileStore) RSVPStats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.Stats
	for _, r := range s.data.RSVPs {
		stats.Add(r.Attendance, 1, r.Guests)
	}
	return stats, nil
}

func (s *FileStore) InsertWish(_ context.Context, wish *models.Wish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wish.ID = uuid.NewString()
	s.data.Wishes = append(s.data.Wishes, *wish)
	if err := s.save(); err != nil {
		s.data.Wishes = s.data.Wishes[:len(s.data.Wishes)-1]
		return err
	}
	return nil
}

func (s *FileStore) ListWishes(_ context.Context) ([]models.Wish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Wish, 0, len(s.data.Wishes))
	for i := len(s.data.Wishes) - 1; i >= 0; i-- {
		result = append(result, s.data.Wishes[i])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *FileStore) Ping(_ context.Context) error {
	if s.file == "" {
		return nil
	}
	dir := filepath.Dir(s.file)
	if _, err := os.Stat(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("stat store directory: %w", err)
	}
	return nil
}

func (s *FileStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// phoneTaken reports whether another RSVP than exceptID uses phone.
// Callers hold s.mu.
func (s *FileStore) phoneTaken(phone, exceptID string) bool {
	for _, r := range s.data.RSVPs {
		if r.Phone == phone && r.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *FileStore) indexOfRSVP(id string) int {
	for i, r := range s.data.RSVPs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// save writes the collections to file. Callers hold s.mu.
func (s *FileStore) save() error {
	if s.file == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, s.file); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		s.data = fileData{}
		return nil
	}

	if err := json.Unmarshal(data, &s.data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}
