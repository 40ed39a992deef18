package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"marsrover/pkg/models"
)

func curiosity() models.Manifest {
	return models.Manifest{
		Name:        "Curiosity",
		LaunchDate:  "2011-11-26",
		LandingDate: "2012-08-06",
		Status:      "active",
		MaxDate:     "2021-03-05",
	}
}

func imageSources(t *testing.T, markup string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)

	var srcs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, a := range n.Attr {
				if a.Key == "src" {
					srcs = append(srcs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return srcs
}

func count(values []string, v string) int {
	n := 0
	for _, x := range values {
		if x == v {
			n++
		}
	}
	return n
}

func TestRenderWithoutManifestShowsLoadingData(t *testing.T) {
	markup, err := Markup(DefaultState())
	require.NoError(t, err)

	assert.Contains(t, markup, "Loading Data...")
	assert.NotContains(t, markup, "Launched:")
	assert.NotContains(t, markup, "Loading Photos...")
}

func TestRenderFormatsManifestDates(t *testing.T) {
	state := DefaultState()
	state.Rovers = state.WithManifest("Curiosity", curiosity())

	markup, err := Markup(state)
	require.NoError(t, err)

	assert.Contains(t, markup, "<b>Launched:</b> Nov 26 2011")
	assert.Contains(t, markup, "<b>Landed:</b> Aug 6 2012")
	assert.Contains(t, markup, "<b>Status:</b> ACTIVE")
	assert.Contains(t, markup, "Loading Photos...")
	assert.NotContains(t, markup, "Loading Data...")
}

func TestRenderSinglePhoto(t *testing.T) {
	state := DefaultState()
	state.Rovers = state.WithManifest("Curiosity", curiosity())
	state.Photos = state.WithPhotos("Curiosity", []models.Photo{{ImgSrc: "a.jpg"}})

	markup, err := Markup(state)
	require.NoError(t, err)

	srcs := imageSources(t, markup)
	assert.Equal(t, 1, count(srcs, "a.jpg"))
	assert.Contains(t, markup, "taken on Mar 5 2021")
}

func TestRenderFiltersPhotosByCamera(t *testing.T) {
	state := DefaultState()
	state.CameraType = "NAVCAM"
	state.Rovers = state.WithManifest("Curiosity", curiosity())
	state.Photos = state.WithPhotos("Curiosity", []models.Photo{
		{ImgSrc: "nav.jpg", Camera: models.Camera{Name: "NAVCAM"}},
		{ImgSrc: "chem.jpg", Camera: models.Camera{Name: "CHEMCAM"}},
	})

	markup, err := Markup(state)
	require.NoError(t, err)

	srcs := imageSources(t, markup)
	assert.Equal(t, 1, count(srcs, "nav.jpg"))
	assert.Zero(t, count(srcs, "chem.jpg"))
}

func TestRenderEmptyFilterResult(t *testing.T) {
	state := DefaultState()
	state.CameraType = "CHEMCAM"
	state.Rovers = state.WithManifest("Curiosity", curiosity())
	state.Photos = state.WithPhotos("Curiosity", []models.Photo{
		{ImgSrc: "nav.jpg", Camera: models.Camera{Name: "NAVCAM"}},
	})

	markup, err := Markup(state)
	require.NoError(t, err)
	assert.Contains(t, markup, "No CHEMCAM photos in the latest set.")
}

func TestRenderMarksSelectedTab(t *testing.T) {
	state := DefaultState()
	state.SelectedRover = "Spirit"

	markup, err := Markup(state)
	require.NoError(t, err)

	assert.Contains(t, markup, `<div class="nav-tab active">
      <a href="#" id="Spirit"`)
	assert.Contains(t, markup, `<div class="nav-tab inactive">
      <a href="#" id="Curiosity"`)
}

func TestRenderAPOD(t *testing.T) {
	state := DefaultState()
	markup, err := Markup(state)
	require.NoError(t, err)
	assert.Contains(t, markup, "Loading...")

	state.APOD = models.APOD{Date: "2024-05-01", MediaType: "image", URL: "https://apod.nasa.gov/pic.jpg", Explanation: "A nebula."}
	markup, err = Markup(state)
	require.NoError(t, err)
	assert.Equal(t, 1, count(imageSources(t, markup), "https://apod.nasa.gov/pic.jpg"))
	assert.Contains(t, markup, "A nebula.")

	state.APOD = models.APOD{Date: "2024-05-02", MediaType: "video", URL: "https://youtube.com/embed/x", Title: "Launch"}
	markup, err = Markup(state)
	require.NoError(t, err)
	assert.Contains(t, markup, "See today's featured video")
	assert.Contains(t, markup, `href="https://youtube.com/embed/x"`)
}

func TestRenderIsDeterministic(t *testing.T) {
	state := DefaultState()
	state.Rovers = state.WithManifest("Curiosity", curiosity())

	first, err := Markup(state)
	require.NoError(t, err)
	second, err := Markup(state)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2021-03-05": "Mar 5 2021",
		"2012-08-06": "Aug 6 2012",
		"2004-01-25": "Jan 25 2004",
		"not a date": "not a date",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDate(in), "FormatDate(%q)", in)
	}
}
