// Package albums wraps the albums API routes in typed operations.
package albums

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/five82/albumdeck/internal/request"
	"github.com/five82/albumdeck/internal/state"
)

// Album is the catalogue record exchanged with the albums API.
type Album = state.Album

// ErrRejected is returned when the API answered with an errors field. The
// error text is already in the store by then.
var ErrRejected = errors.New("request rejected")

// Catalog is the set of album operations the UI drives. It is implemented by
// *Service and can be faked in tests.
type Catalog interface {
	List(ctx context.Context) ([]Album, error)
	Get(ctx context.Context, id int64) (Album, error)
	ByArtist(ctx context.Context, name string) ([]Album, error)
	Create(ctx context.Context, input NewAlbum) (Album, error)
	Update(ctx context.Context, id int64, changes Changes) error
	Delete(ctx context.Context, id int64) error
	Random(ctx context.Context) (Album, error)
}

var _ Catalog = (*Service)(nil)

// NewAlbum is the body of a create request.
type NewAlbum struct {
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Price  float32 `json:"price"`
}

// Changes is the body of an update request. Nil fields are left alone.
type Changes struct {
	Title  *string  `json:"title,omitempty"`
	Artist *string  `json:"artist,omitempty"`
	Price  *float32 `json:"price,omitempty"`
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Artist == nil && c.Price == nil
}

func (c Changes) apply(a Album) Album {
	if c.Title != nil {
		a.Title = *c.Title
	}
	if c.Artist != nil {
		a.Artist = *c.Artist
	}
	if c.Price != nil {
		a.Price = *c.Price
	}
	return a
}

// Service issues album requests through a request.Factory and records the
// results in the factory's store. It is the only writer of store albums.
type Service struct {
	factory *request.Factory
	store   *state.Store
}

// NewService wraps factory.
func NewService(factory *request.Factory) *Service {
	return &Service{factory: factory, store: factory.Store()}
}

// List fetches every album and replaces the stored list.
func (s *Service) List(ctx context.Context) ([]Album, error) {
	var out []Album
	resp, err := s.call(ctx, "albums", request.MethodGet, nil, &out)
	if err != nil {
		return nil, err
	}
	if !resp.Superseded {
		s.store.SetAlbums(out)
	}
	return out, nil
}

// Get fetches one album and upserts it into the stored list.
func (s *Service) Get(ctx context.Context, id int64) (Album, error) {
	var out []Album
	resp, err := s.call(ctx, albumPath(id), request.MethodGet, nil, &out)
	if err != nil {
		return Album{}, err
	}
	if len(out) == 0 {
		return Album{}, fmt.Errorf("album %d: empty reply", id)
	}
	if !resp.Superseded {
		s.store.UpsertAlbum(out[0])
	}
	return out[0], nil
}

// ByArtist searches by artist name and replaces the stored list with the
// matches.
func (s *Service) ByArtist(ctx context.Context, name string) ([]Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("artist name is empty")
	}
	var out []Album
	resp, err := s.call(ctx, "albums/artist/"+url.PathEscape(name), request.MethodGet, nil, &out)
	if err != nil {
		return nil, err
	}
	if !resp.Superseded {
		s.store.SetAlbums(out)
	}
	return out, nil
}

// Create adds an album.
func (s *Service) Create(ctx context.Context, input NewAlbum) (Album, error) {
	var out Album
	resp, err := s.call(ctx, "albums", request.MethodPut, input, &out)
	if err != nil {
		return Album{}, err
	}
	if !resp.Superseded {
		s.store.UpsertAlbum(out)
	}
	return out, nil
}

// Update patches the album with id. The API only confirms, so the stored
// copy is patched locally.
func (s *Service) Update(ctx context.Context, id int64, changes Changes) error {
	if changes.Empty() {
		return fmt.Errorf("album %d: no changes", id)
	}
	resp, err := s.call(ctx, albumPath(id), request.MethodPatch, changes, nil)
	if err != nil {
		return err
	}
	if resp.Superseded {
		return nil
	}
	for _, a := range s.store.Snapshot().Albums {
		if a.ID == id {
			s.store.UpsertAlbum(changes.apply(a))
			break
		}
	}
	return nil
}

// Delete removes the album with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	resp, err := s.call(ctx, albumPath(id), request.MethodDelete, nil, nil)
	if err != nil {
		return err
	}
	if !resp.Superseded {
		s.store.RemoveAlbum(id)
	}
	return nil
}

// Random asks the API to invent an album.
func (s *Service) Random(ctx context.Context) (Album, error) {
	var out Album
	resp, err := s.call(ctx, "albums/random", request.MethodPut, nil, &out)
	if err != nil {
		return Album{}, err
	}
	if !resp.Superseded {
		s.store.UpsertAlbum(out)
	}
	return out, nil
}

func (s *Service) call(ctx context.Context, path string, method request.Method, params, dst any) (*request.Response, error) {
	resp, err := s.factory.New(path).Call(ctx, params, method)
	if err != nil {
		return nil, err
	}
	if resp.HasErrors {
		return resp, fmt.Errorf("%s %s: %w: %s", method, path, ErrRejected, strings.Join(resp.Errors, "; "))
	}
	if dst != nil {
		if err := resp.Decode(dst); err != nil {
			return resp, fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}
	return resp, nil
}

func albumPath(id int64) string {
	return "albums/" + strconv.FormatInt(id, 10)
}
