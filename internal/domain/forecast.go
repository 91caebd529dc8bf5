package domain

// Forecast is the typed form of one AEMET locality document.
type Forecast struct {
	ID          *string  `json:"id,omitempty"`
	Version     *float64 `json:"version,omitempty"`
	Origin      Origin   `json:"origin"`
	GeneratedAt string   `json:"generated_at"` // "elaborado", kept verbatim
	Location    string   `json:"location"`
	Province    string   `json:"province"`
	Days        []Day    `json:"days"`
}

// Origin holds the producer metadata every document carries.
type Origin struct {
	Producer    string `json:"producer"`
	Web         string `json:"web"`
	Link        string `json:"link"`
	Language    string `json:"language"`
	Copyright   string `json:"copyright"`
	LegalNotice string `json:"legal_notice"`
}

// Day is one forecast day. The three point series are always present; every
// periodized list may be empty.
type Day struct {
	Date             *string        `json:"date,omitempty"`
	Precipitation    []PeriodValue  `json:"precipitation"`
	SnowLevel        []PeriodValue  `json:"snow_level"`
	Sky              []SkyCondition `json:"sky"`
	Wind             []Wind         `json:"wind"`
	Gust             []PeriodValue  `json:"gust"`
	Temperature      PointSeries    `json:"temperature"`
	ThermalSensation PointSeries    `json:"thermal_sensation"`
	Humidity         PointSeries    `json:"humidity"`
	UVMax            *string        `json:"uv_max,omitempty"`
}

// PeriodValue is a measurement qualified by an optional time band.
type PeriodValue struct {
	Period *string `json:"period,omitempty"`
	Value  *string `json:"value,omitempty"`
}

// SkyCondition is a sky-state code plus its human description.
type SkyCondition struct {
	Period      *string `json:"period,omitempty"`
	Description *string `json:"description,omitempty"`
	Value       *string `json:"value,omitempty"`
}

// Wind carries direction and speed as plain strings; an absent value is "".
type Wind struct {
	Period    *string `json:"period,omitempty"`
	Direction string  `json:"direction"`
	Speed     string  `json:"speed"`
}

// PointSeries is a daily min/max range with hourly readings.
type PointSeries struct {
	Max      int8      `json:"max"`
	Min      int8      `json:"min"`
	Readings []Reading `json:"readings"`
}

// Reading is a single hourly sample.
type Reading struct {
	Hour  *int8   `json:"hour,omitempty"`
	Value *string `json:"value,omitempty"`
}

// hasText reports whether s is present and non-empty.
func hasText(s *string) bool {
	return s != nil && *s != ""
}

// orDefault dereferences s, falling back to def when s is nil.
func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
