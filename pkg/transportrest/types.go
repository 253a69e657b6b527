package transportrest

type Line struct {
	Name string `json:"name"`
}

type Stop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Departure is one passage of a vehicle through the monitored stop.
// Optional fields are left empty (or nil) when the API omits them or sends null.
type Departure struct {
	TripID    string `json:"tripId"`
	Stop      Stop   `json:"stop"`
	Line      *Line  `json:"line"`
	Direction string `json:"direction"`

	When        string `json:"when"`
	PlannedWhen string `json:"plannedWhen"`
	Delay       *int   `json:"delay"`

	Platform        string `json:"platform"`
	PlannedPlatform string `json:"plannedPlatform"`
}

// LineName returns the line's display name, or "---" when the API sent no line
func (d Departure) LineName() string {
	if d.Line == nil || d.Line.Name == "" {
		return "---"
	}

	return d.Line.Name
}

func (d Departure) DirectionName() string {
	if d.Direction == "" {
		return "---"
	}

	return d.Direction
}

// PlatformName prefers the realtime platform over the planned one
func (d Departure) PlatformName() string {
	if d.Platform != "" {
		return d.Platform
	}

	return d.PlannedPlatform
}

type Stopover struct {
	Stop         Stop   `json:"stop"`
	Arrival      string `json:"arrival"`
	ArrivalDelay *int   `json:"arrivalDelay"`
}

type departuresResponse struct {
	Departures []Departure `json:"departures"`
}

type tripResponse struct {
	Trip struct {
		Stopovers []Stopover `json:"stopovers"`
	} `json:"trip"`
}
