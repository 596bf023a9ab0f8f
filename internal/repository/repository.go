package repository

import (
	"errors"
	"slices"
	"sync"

	"github.com/otcheredev/hms-console/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Page is one slice of a sorted result set
type Page[T any] struct {
	Items  []T
	Total  int
	Number int
	Size   int
}

// Repository is the sandbox system of record. It keeps everything in memory behind
// one lock and hands out copies.
type Repository struct {
	mu           sync.RWMutex
	users        map[int64]*User
	patients     map[int64]*models.Patient
	appointments map[int64]*models.Appointment
	records      map[int64]*models.MedicalRecord
	bills        map[int64]*models.Bill
	seq          map[string]int64
}

// New creates an empty repository
func New() *Repository {
	return &Repository{
		users:        make(map[int64]*User),
		patients:     make(map[int64]*models.Patient),
		appointments: make(map[int64]*models.Appointment),
		records:      make(map[int64]*models.MedicalRecord),
		bills:        make(map[int64]*models.Bill),
		seq:          make(map[string]int64),
	}
}

func (r *Repository) nextID(kind string) int64 {
	r.seq[kind]++
	return r.seq[kind]
}

// sorted filters and orders src. Callers hold the lock.
func sorted[T any](src map[int64]*T, keep func(*T) bool, cmp func(a, b *T) int) []*T {
	matched := make([]*T, 0, len(src))
	for _, v := range src {
		if keep == nil || keep(v) {
			matched = append(matched, v)
		}
	}
	slices.SortFunc(matched, cmp)
	return matched
}

func collect[T any](src map[int64]*T, keep func(*T) bool, cmp func(a, b *T) int, page models.PageRequest) Page[T] {
	page = page.Normalize()
	matched := sorted(src, keep, cmp)

	out := Page[T]{Items: []T{}, Total: len(matched), Number: page.Page, Size: page.Size}
	start := page.Page * page.Size
	if start >= len(matched) {
		return out
	}
	end := min(start+page.Size, len(matched))
	for _, v := range matched[start:end] {
		out.Items = append(out.Items, *v)
	}
	return out
}

func all[T any](src map[int64]*T, keep func(*T) bool, cmp func(a, b *T) int) []T {
	matched := sorted(src, keep, cmp)
	out := make([]T, 0, len(matched))
	for _, v := range matched {
		out = append(out, *v)
	}
	return out
}

func count[T any](src map[int64]*T, keep func(*T) bool) int {
	n := 0
	for _, v := range src {
		if keep == nil || keep(v) {
			n++
		}
	}
	return n
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
