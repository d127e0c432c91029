package albumsapi

import (
	"errors"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/five82/albumdeck/internal/state"
)

// ErrNotFound is returned for unknown album IDs.
var ErrNotFound = errors.New("album not found")

// Repository is an in-memory album table.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	albums []state.Album
	faker  *gofakeit.Faker
}

// NewRepository returns a repository seeded with albums. IDs are reassigned
// sequentially from 1. seed drives Random.
func NewRepository(seed uint64, albums ...state.Album) *Repository {
	r := &Repository{faker: gofakeit.New(int64(seed))}
	for _, a := range albums {
		r.insertLocked(a)
	}
	return r
}

// SampleAlbums returns the catalogue the mock server starts with.
func SampleAlbums() []state.Album {
	return []state.Album{
		{Title: "Blue Train", Artist: "John Coltrane", Price: 56.99},
		{Title: "Jeru", Artist: "Gerry Mulligan", Price: 17.99},
		{Title: "Sarah Vaughan and Clifford Brown", Artist: "Sarah Vaughan", Price: 39.99},
	}
}

// List returns every album ordered by ID.
func (r *Repository) List() []state.Album {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.albums)
}

// Get returns the album with id.
func (r *Repository) Get(id int64) (state.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return state.Album{}, ErrNotFound
	}
	return r.albums[idx], nil
}

// ByArtist returns albums whose artist contains name, case-insensitively.
func (r *Repository) ByArtist(name string) []state.Album {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(name)
	var out []state.Album
	for _, a := range r.albums {
		if strings.Contains(strings.ToLower(a.Artist), needle) {
			out = append(out, a)
		}
	}
	return out
}

// Create stores a and returns it with its new ID.
func (r *Repository) Create(a state.Album) state.Album {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(a)
}

// Update applies patch to the album with id.
func (r *Repository) Update(id int64, patch func(*state.Album)) (state.Album, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return state.Album{}, ErrNotFound
	}
	patch(&r.albums[idx])
	r.albums[idx].ID = id
	return r.albums[idx], nil
}

// Delete removes the album with id.
func (r *Repository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	r.albums = slices.Delete(r.albums, idx, idx+1)
	return nil
}

// Random creates an album with a generated artist, title and a price
// between 1 and 100.
func (r *Repository) Random() state.Album {
	r.mu.Lock()
	defer r.mu.Unlock()
	price := r.faker.Float32Range(1, 100)
	a := state.Album{
		Artist: r.faker.Name(),
		Title:  r.faker.Slogan(),
		Price:  float32(math.Round(float64(price)*100) / 100),
	}
	return r.insertLocked(a)
}

func (r *Repository) insertLocked(a state.Album) state.Album {
	r.nextID++
	a.ID = r.nextID
	r.albums = append(r.albums, a)
	return a
}

func (r *Repository) indexLocked(id int64) int {
	return slices.IndexFunc(r.albums, func(a state.Album) bool { return a.ID == id })
}
