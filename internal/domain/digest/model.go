package digest

// Modes tagged onto cache entries to distinguish write categories.
const (
	ModeCurrent      = "current"
	ModeReaccumulate = "reaccumulate"
)

// Exposure is one observational event as the nightly digest API reports it.
// Every field is optional on the wire, so everything is a pointer; the
// pipeline only ever inspects CanSeeSky.
type Exposure struct {
	ExposureID        *int64   `json:"exposure_id"`
	ExposureName      *string  `json:"exposure_name"`
	ExpTime           *float64 `json:"exp_time"`
	ImgType           *string  `json:"img_type"`
	ObservationReason *string  `json:"observation_reason"`
	ScienceProgram    *string  `json:"science_program"`
	TargetName        *string  `json:"target_name"`
	CanSeeSky         *bool    `json:"can_see_sky"`
	Band              *string  `json:"band"`
	ObsStart          *string  `json:"obs_start"`
	PhysicalFilter    *string  `json:"physical_filter"`
	DayObs            *int     `json:"day_obs"`
	SeqNum            *int     `json:"seq_num"`
	ObsEnd            *string  `json:"obs_end"`
	Overhead          *float64 `json:"overhead"`
	ZeroPointMedian   *float64 `json:"zero_point_median"`
	VisitID           *int64   `json:"visit_id"`
	PixelScaleMedian  *float64 `json:"pixel_scale_median"`
	PSFSigmaMedian    *float64 `json:"psf_sigma_median"`
	VisitGap          *float64 `json:"visit_gap"`
}

// OpenDomeTime records one dome open/close interval for a night.
type OpenDomeTime struct {
	DayObs    *int     `json:"day_obs"`
	OpenTime  *string  `json:"open_time"`
	CloseTime *string  `json:"close_time"`
	OpenHours *float64 `json:"open_hours"`
}

// Response is the upstream payload for one [start, end) window. Exposures
// are chronological; the last element is the most recent. Both count fields
// are nullable across API revisions.
type Response struct {
	Exposures              []Exposure     `json:"exposures"`
	ExposuresCount         *int           `json:"exposures_count"`
	SumExposureTime        *float64       `json:"sum_exposure_time"`
	OnSkyExposuresCount    *int           `json:"on_sky_exposures_count"`
	TotalOnSkyExposureTime *float64       `json:"total_on_sky_exposure_time"`
	OpenDomeTimes          []OpenDomeTime `json:"open_dome_times"`
}

// Current is the reduced view of a Response before defaulting into a Summary.
type Current struct {
	LastExposure   *Exposure
	LastCanSeeSky  *bool
	ExposuresCount int
}

// Summary is the externally visible result. DomeOpen is nil when the window
// holds no exposures; ExposureCount is never null in output.
type Summary struct {
	DomeOpen      *bool `json:"dome_open"`
	ExposureCount int   `json:"exposure_count"`
}

// UpstreamConfig addresses one fetch against the digest API.
type UpstreamConfig struct {
	Endpoint   string
	Token      string
	Instrument string
}

// CacheConfig addresses one write against the cache relay.
type CacheConfig struct {
	Endpoint string
	Token    string
}

// Config is the per-request runtime configuration threaded explicitly
// through the pipeline. Mode, DayObsStart and DayObsEnd are deployment
// overrides that win over request-supplied values.
type Config struct {
	Upstream UpstreamConfig
	Cache    CacheConfig

	Mode        string
	DayObsStart string
	DayObsEnd   string

	SurveyStart string
	WindowDays  int
}

// Query holds the caller-supplied parameters of one stats request.
type Query struct {
	Mode            string
	StartDate       string
	EndDate         string
	OverrideRunDate bool
}

// Entry is the structured payload delivered to the cache service.
// StartDate is set only when the window is a canonical one-day bucket.
type Entry struct {
	Endpoint  string `json:"endpoint"`
	Params    any    `json:"params"`
	Data      any    `json:"data"`
	StartDate string `json:"startDate,omitempty"`
}
