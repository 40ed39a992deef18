// Package view holds the per-session UI state, the store that merges partial
// updates into it and the renderer that turns a state into page markup.
package view

import (
	"errors"
	"fmt"
	"slices"

	"marsrover/pkg/models"
)

// CameraAll disables camera filtering.
const CameraAll = "ALL"

var (
	// DefaultRoverNames is the fixed tab order.
	DefaultRoverNames = []string{"Curiosity", "Opportunity", "Spirit"}

	// CameraTypes are the filters offered in the page header.
	CameraTypes = []string{CameraAll, "NAVCAM", "CHEMCAM"}
)

var (
	ErrUnknownRover = errors.New("unknown rover")

	// ErrDroppedRover is returned for a patch whose rovers or photos map
	// leaves out a rover that is already loaded. Both slices only grow.
	ErrDroppedRover = errors.New("patch drops a loaded rover")
)

type User struct {
	Name string `json:"name"`
}

// State is the whole UI state of one session.
//
// Maps held by a State are never mutated once merged: updates replace the
// whole map, so snapshots can share them safely.
type State struct {
	User          User                       `json:"user"`
	APOD          models.APOD                `json:"apod"`
	RoverNames    []string                   `json:"roverNames"`
	Rovers        map[string]models.Manifest `json:"rovers"`
	SelectedRover string                     `json:"selectedRover"`
	Photos        map[string][]models.Photo  `json:"photos"`
	CameraType    string                     `json:"cameraType"`
}

// DefaultState is the state a session starts with.
func DefaultState() State {
	return State{
		User:          User{Name: "Student"},
		RoverNames:    slices.Clone(DefaultRoverNames),
		Rovers:        map[string]models.Manifest{},
		SelectedRover: DefaultRoverNames[0],
		Photos:        map[string][]models.Photo{},
		CameraType:    CameraAll,
	}
}

// Patch is a partial state. A nil field is absent and leaves the current
// slice untouched; a non-nil field replaces it wholesale.
type Patch struct {
	User          *User
	APOD          *models.APOD
	RoverNames    []string
	Rovers        map[string]models.Manifest
	SelectedRover *string
	Photos        map[string][]models.Photo
	CameraType    *string
}

// Manifest returns the manifest loaded for rover, if any.
func (s State) Manifest(rover string) (models.Manifest, bool) {
	m, ok := s.Rovers[rover]
	return m, ok
}

// PhotosFor returns the latest photos loaded for rover, if any.
func (s State) PhotosFor(rover string) ([]models.Photo, bool) {
	p, ok := s.Photos[rover]
	return p, ok
}

// WithManifest returns a copy of the rovers slice with rover set to m.
func (s State) WithManifest(rover string, m models.Manifest) map[string]models.Manifest {
	out := make(map[string]models.Manifest, len(s.Rovers)+1)
	for k, v := range s.Rovers {
		out[k] = v
	}
	out[rover] = m
	return out
}

// WithPhotos returns a copy of the photos slice with rover set to photos.
func (s State) WithPhotos(rover string, photos []models.Photo) map[string][]models.Photo {
	out := make(map[string][]models.Photo, len(s.Photos)+1)
	for k, v := range s.Photos {
		out[k] = v
	}
	out[rover] = slices.Clone(photos)
	return out
}

func (s State) apply(p Patch) (State, error) {
	next := s
	if p.User != nil {
		next.User = *p.User
	}
	if p.APOD != nil {
		next.APOD = *p.APOD
	}
	if p.RoverNames != nil {
		next.RoverNames = slices.Clone(p.RoverNames)
	}
	if p.Rovers != nil {
		next.Rovers = p.Rovers
	}
	if p.SelectedRover != nil {
		next.SelectedRover = *p.SelectedRover
	}
	if p.Photos != nil {
		next.Photos = p.Photos
	}
	if p.CameraType != nil {
		next.CameraType = *p.CameraType
	}

	if !slices.Contains(next.RoverNames, next.SelectedRover) {
		return s, fmt.Errorf("%w: %q", ErrUnknownRover, next.SelectedRover)
	}
	if rover, ok := droppedKey(s.Rovers, next.Rovers); ok {
		return s, fmt.Errorf("%w: rovers %q", ErrDroppedRover, rover)
	}
	if rover, ok := droppedKey(s.Photos, next.Photos); ok {
		return s, fmt.Errorf("%w: photos %q", ErrDroppedRover, rover)
	}
	return next, nil
}

func droppedKey[V any](prev, next map[string]V) (string, bool) {
	for k := range prev {
		if _, ok := next[k]; !ok {
			return k, true
		}
	}
	return "", false
}

// NormalizeCamera maps an empty filter to CameraAll.
func NormalizeCamera(camera string) string {
	if camera == "" {
		return CameraAll
	}
	return camera
}

// FilterByCamera keeps the photos taken by camera. CameraAll keeps all.
func FilterByCamera(photos []models.Photo, camera string) []models.Photo {
	camera = NormalizeCamera(camera)
	if camera == CameraAll {
		return photos
	}
	out := make([]models.Photo, 0, len(photos))
	for _, p := range photos {
		if p.Camera.Name == camera {
			out = append(out, p)
		}
	}
	return out
}
