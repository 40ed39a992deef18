package view

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marsrover/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func TestMergeSelectedRoverOnlyTouchesThatKey(t *testing.T) {
	initial := DefaultState()
	initial.Rovers = initial.WithManifest("Curiosity", models.Manifest{Name: "Curiosity"})
	initial.Photos = initial.WithPhotos("Curiosity", []models.Photo{{ImgSrc: "a.jpg"}})

	var renders []State
	store := NewStore(initial, func(s State) { renders = append(renders, s) })

	require.NoError(t, store.Merge(Patch{SelectedRover: ptr("Spirit")}))

	want := initial
	want.SelectedRover = "Spirit"
	if diff := cmp.Diff(want, store.State()); diff != "" {
		t.Errorf("state after merge (-want +got):\n%s", diff)
	}
	require.Len(t, renders, 1)
	assert.Equal(t, "Spirit", renders[0].SelectedRover)
}

func TestMergeRendersOncePerMergeInOrder(t *testing.T) {
	var seen []string
	store := NewStore(DefaultState(), func(s State) { seen = append(seen, s.SelectedRover) })

	require.NoError(t, store.Merge(Patch{SelectedRover: ptr("Opportunity")}))
	require.NoError(t, store.Merge(Patch{SelectedRover: ptr("Spirit")}))
	require.NoError(t, store.Merge(Patch{CameraType: ptr("NAVCAM")}))

	assert.Equal(t, []string{"Opportunity", "Spirit", "Spirit"}, seen)
}

func TestMergeLastWriteWins(t *testing.T) {
	store := NewStore(DefaultState(), nil)

	require.NoError(t, store.Merge(Patch{APOD: &models.APOD{Title: "first", Date: "2024-01-01"}}))
	require.NoError(t, store.Merge(Patch{APOD: &models.APOD{Title: "second", Date: "2024-01-02"}}))

	assert.Equal(t, "second", store.State().APOD.Title)
}

func TestMergeRejectsUnknownRover(t *testing.T) {
	rendered := 0
	store := NewStore(DefaultState(), func(State) { rendered++ })

	err := store.Merge(Patch{SelectedRover: ptr("Perseverance"), CameraType: ptr("NAVCAM")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRover))

	state := store.State()
	assert.Equal(t, "Curiosity", state.SelectedRover)
	assert.Equal(t, CameraAll, state.CameraType, "a rejected patch applies nothing")
	assert.Zero(t, rendered)
}

func TestMergeRejectsRoverNamesDroppingSelection(t *testing.T) {
	store := NewStore(DefaultState(), nil)

	err := store.Merge(Patch{RoverNames: []string{"Opportunity", "Spirit"}})
	require.ErrorIs(t, err, ErrUnknownRover)
	assert.Equal(t, DefaultRoverNames, store.State().RoverNames)
}

func TestWithManifestDoesNotMutatePreviousMap(t *testing.T) {
	state := DefaultState()
	before := state.Rovers

	next := state.WithManifest("Spirit", models.Manifest{Name: "Spirit"})

	assert.Empty(t, before)
	assert.Contains(t, next, "Spirit")
}

func TestFilterByCamera(t *testing.T) {
	photos := []models.Photo{
		{ID: 1, Camera: models.Camera{Name: "NAVCAM"}},
		{ID: 2, Camera: models.Camera{Name: "CHEMCAM"}},
		{ID: 3, Camera: models.Camera{Name: "NAVCAM"}},
	}

	tests := []struct {
		camera string
		want   []int
	}{
		{camera: CameraAll, want: []int{1, 2, 3}},
		{camera: "", want: []int{1, 2, 3}},
		{camera: "NAVCAM", want: []int{1, 3}},
		{camera: "CHEMCAM", want: []int{2}},
		{camera: "MAHLI", want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.camera, func(t *testing.T) {
			got := []int{}
			for _, p := range FilterByCamera(photos, tt.camera) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateDerivesFromCurrentState(t *testing.T) {
	store := NewStore(DefaultState(), nil)

	for _, rover := range DefaultRoverNames {
		rover := rover
		require.NoError(t, store.Update(func(s State) Patch {
			return Patch{Rovers: s.WithManifest(rover, models.Manifest{Name: rover})}
		}))
	}

	assert.Len(t, store.State().Rovers, 3)
}

func TestMergeRejectsPatchDroppingLoadedRover(t *testing.T) {
	rendered := 0
	store := NewStore(DefaultState(), func(State) { rendered++ })

	require.NoError(t, store.Update(func(s State) Patch {
		return Patch{
			Rovers: s.WithManifest("Spirit", models.Manifest{Name: "Spirit"}),
			Photos: s.WithPhotos("Spirit", []models.Photo{{ID: 1, ImgSrc: "a.jpg"}}),
		}
	}))
	require.Equal(t, 1, rendered)

	err := store.Merge(Patch{Rovers: map[string]models.Manifest{}})
	require.ErrorIs(t, err, ErrDroppedRover)

	err = store.Merge(Patch{
		CameraType: ptr("NAVCAM"),
		Photos:     map[string][]models.Photo{"Curiosity": {}},
	})
	require.ErrorIs(t, err, ErrDroppedRover)

	state := store.State()
	assert.Contains(t, state.Rovers, "Spirit")
	assert.Contains(t, state.Photos, "Spirit")
	assert.Equal(t, CameraAll, state.CameraType, "a rejected patch applies nothing")
	assert.Equal(t, 1, rendered)

	// Replacing a loaded entry is fine.
	require.NoError(t, store.Merge(Patch{Rovers: map[string]models.Manifest{"Spirit": {Name: "Spirit", Status: "complete"}}}))
	assert.Equal(t, "complete", store.State().Rovers["Spirit"].Status)
}
