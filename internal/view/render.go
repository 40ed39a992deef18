package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"marsrover/pkg/models"
)

const (
	headerImage        = "/assets/images/bg-header.jpeg"
	loadingData        = "Loading Data..."
	loadingPhotos      = "Loading Photos..."
	loadingPictureText = "Loading..."
	appTemplateName    = "app"
)

const appTemplate = `
<header>
  <div class="banner">
    <img class="banner-img" src="{{.HeaderImage}}" />
    <h1 class="banner-text">Explore the Mars Rovers</h1>
  </div>
  <p class="greeting">Welcome, {{.UserName}}!</p>
  <nav class="nav-container">
    {{- range .Tabs}}
    <div class="nav-tab {{if .Active}}active{{else}}inactive{{end}}">
      <a href="#" id="{{.Name}}" class="nav-link" onclick="return onSelectTab(this.id)">{{.Name}}</a>
    </div>
    {{- end}}
  </nav>
</header>
<div class="type-camera">
  Type camera:
  {{- range .Cameras}}
  <a href="/?camera-type={{.Name}}"{{if .Active}} class="active"{{end}}>{{.Name}}</a>
  {{- end}}
</div>
<main>
  <section class="apod">
    <h2>Astronomy Picture of the Day</h2>
    {{- with .APOD}}
    {{- if .IsVideo}}
    <p>See today's featured video <a href="{{.URL}}">here</a></p>
    <p>{{.Title}}</p>
    <p>{{.Explanation}}</p>
    {{- else}}
    <img src="{{.URL}}" height="350px" width="100%" />
    <p>{{.Explanation}}</p>
    {{- end}}
    {{- else}}
    <div> {{.LoadingPicture}} </div>
    {{- end}}
  </section>
  {{- with .Rover}}
  <section>
    <p><b>Launched:</b> {{.Launched}}</p>
    <p><b>Landed:</b> {{.Landed}}</p>
    <p><b>Status:</b> {{.Status}}</p>
  </section>
  {{- if .PhotosLoaded}}
  <section>
    <p>Check out some of {{.Name}}'s most recent photos. The following photos were taken on {{.TakenOn}}.</p>
    <div class="photos">
      {{- range .Photos}}
      <img class="rover-img" src="{{.ImgSrc}}" width="300px" />
      {{- else}}
      <p>No {{$.Camera}} photos in the latest set.</p>
      {{- end}}
    </div>
  </section>
  {{- else}}
  <section>
    <div> {{$.LoadingPhotos}} </div>
  </section>
  {{- end}}
  {{- else}}
  <div> {{.LoadingData}} </div>
  {{- end}}
</main>
<footer>
  <h6>
    This page was made possible by the <a href="https://api.nasa.gov/">NASA API</a>.
  </h6>
</footer>
`

var appTmpl = template.Must(template.New(appTemplateName).Parse(appTemplate))

type tabView struct {
	Name   string
	Active bool
}

type cameraView struct {
	Name   string
	Active bool
}

type roverView struct {
	Name         string
	Launched     string
	Landed       string
	Status       string
	TakenOn      string
	PhotosLoaded bool
	Photos       []models.Photo
}

type appView struct {
	HeaderImage    string
	UserName       string
	Tabs           []tabView
	Cameras        []cameraView
	Camera         string
	APOD           *models.APOD
	Rover          *roverView
	LoadingData    string
	LoadingPhotos  string
	LoadingPicture string
}

func newAppView(s State) appView {
	camera := NormalizeCamera(s.CameraType)
	v := appView{
		HeaderImage:    headerImage,
		UserName:       s.User.Name,
		Camera:         camera,
		LoadingData:    loadingData,
		LoadingPhotos:  loadingPhotos,
		LoadingPicture: loadingPictureText,
	}

	for _, name := range s.RoverNames {
		v.Tabs = append(v.Tabs, tabView{Name: name, Active: name == s.SelectedRover})
	}
	for _, name := range CameraTypes {
		v.Cameras = append(v.Cameras, cameraView{Name: name, Active: name == camera})
	}

	if !s.APOD.IsZero() {
		apod := s.APOD
		v.APOD = &apod
	}

	if m, ok := s.Manifest(s.SelectedRover); ok {
		rv := &roverView{
			Name:     m.Name,
			Launched: FormatDate(m.LaunchDate),
			Landed:   FormatDate(m.LandingDate),
			Status:   strings.ToUpper(m.Status),
			TakenOn:  FormatDate(m.MaxDate),
		}
		if rv.Name == "" {
			rv.Name = s.SelectedRover
		}
		if photos, ok := s.PhotosFor(s.SelectedRover); ok {
			rv.PhotosLoaded = true
			rv.Photos = FilterByCamera(photos, camera)
		}
		v.Rover = rv
	}
	return v
}

// Render writes the complete page markup for s. It has no side effects
// beyond writing to w.
func Render(w io.Writer, s State) error {
	if err := appTmpl.Execute(w, newAppView(s)); err != nil {
		return fmt.Errorf("view: render: %w", err)
	}
	return nil
}

// Markup renders s into a string.
func Markup(s State) (string, error) {
	var buffer bytes.Buffer
	if err := Render(&buffer, s); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

// FormatDate turns "2021-03-05" into "Mar 5 2021". Anything that is not a
// calendar date is returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return t.Format("Jan 2 2006")
}
