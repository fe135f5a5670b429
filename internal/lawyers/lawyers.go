package lawyers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// ErrNotFound is returned by ByID for unknown ids
var ErrNotFound = errors.New("lawyer not found")

// Lawyer is one directory entry
type Lawyer struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Specialization  string   `json:"specialization"`
	Experience      int      `json:"experience"`
	ConsultationFee int      `json:"consultationFee"`
	Rating          float64  `json:"rating"`
	CasesHandled    int      `json:"casesHandled"`
	Expertise       []string `json:"expertise"`
	Location        string   `json:"location,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
}

// Directory serves lawyers from a JSON file, re-reading it when it changes
type Directory struct {
	path string

	mu      sync.RWMutex
	modTime time.Time
	cached  []Lawyer
}

// NewDirectory returns a Directory backed by path. The file may not exist yet.
func NewDirectory(path string) *Directory {
	return &Directory{path: path}
}

// All returns every lawyer. ok is false when the backing file is missing.
func (d *Directory) All() (lawyers []Lawyer, ok bool, err error) {
	info, err := os.Stat(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Lawyer{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	d.mu.RLock()
	if d.cached != nil && info.ModTime().Equal(d.modTime) {
		lawyers = d.cached
		d.mu.RUnlock()
		return lawyers, true, nil
	}
	d.mu.RUnlock()

	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(data, &lawyers); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", d.path, err)
	}
	if lawyers == nil {
		lawyers = []Lawyer{}
	}

	d.mu.Lock()
	d.cached = lawyers
	d.modTime = info.ModTime()
	d.mu.Unlock()
	return lawyers, true, nil
}

// BySpecialization matches s case-insensitively as a substring of the
// specialization or of any expertise entry.
func (d *Directory) BySpecialization(s string) ([]Lawyer, bool, error) {
	all, ok, err := d.All()
	if err != nil || !ok {
		return all, ok, err
	}
	needle := strings.ToLower(s)
	return lo.Filter(all, func(l Lawyer, _ int) bool {
		if strings.Contains(strings.ToLower(l.Specialization), needle) {
			return true
		}
		return lo.SomeBy(l.Expertise, func(e string) bool {
			return strings.Contains(strings.ToLower(e), needle)
		})
	}), true, nil
}

// ByID returns the lawyer with the given id
func (d *Directory) ByID(id string) (*Lawyer, error) {
	all, _, err := d.All()
	if err != nil {
		return nil, err
	}
	l, ok := lo.Find(all, func(l Lawyer) bool { return l.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}
