package models

// Manifest is the mission summary NASA returns under "photo_manifest".
type Manifest struct {
	Name        string       `json:"name"`
	LandingDate string       `json:"landing_date"`
	LaunchDate  string       `json:"launch_date"`
	Status      string       `json:"status"`
	MaxSol      int          `json:"max_sol"`
	MaxDate     string       `json:"max_date"`
	TotalPhotos int          `json:"total_photos"`
	Photos      []SolSummary `json:"photos,omitempty"`
}

// SolSummary is one per-sol entry of a manifest's photo history.
type SolSummary struct {
	Sol         int      `json:"sol"`
	EarthDate   string   `json:"earth_date"`
	TotalPhotos int      `json:"total_photos"`
	Cameras     []string `json:"cameras"`
}

// Photo is one record of "latest_photos".
type Photo struct {
	ID        int          `json:"id"`
	Sol       int          `json:"sol"`
	Camera    Camera       `json:"camera"`
	ImgSrc    string       `json:"img_src"`
	EarthDate string       `json:"earth_date"`
	Rover     RoverSummary `json:"rover"`
}

type Camera struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	RoverID  int    `json:"rover_id"`
	FullName string `json:"full_name"`
}

type RoverSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	LandingDate string `json:"landing_date"`
	LaunchDate  string `json:"launch_date"`
	Status      string `json:"status"`
}
