package domain

import (
	"fmt"
	"strings"
)

const (
	allDay       = "all day"
	headerRule   = "============================================================"
	dateRule     = "----------------------------------------"
	noPrecip     = "0"
	noValue      = "-"
	unitCelsius  = "°C"
	unitPercent  = "%"
	reportIndent = "    "
)

// RenderReport formats a forecast as the plain-text email body. It is a pure
// function of f: equal forecasts render to byte-identical reports.
func RenderReport(f Forecast) string {
	var b strings.Builder

	fmt.Fprintf(&b, "METEO FORECAST FOR %s (%s)\n", f.Location, f.Province)
	fmt.Fprintf(&b, "Generated: %s\n", f.GeneratedAt)
	fmt.Fprintf(&b, "Source: %s\n", f.Origin.Producer)
	b.WriteString(headerRule + "\n")

	for _, day := range f.Days {
		renderDay(&b, day)
	}

	fmt.Fprintf(&b, "\n%s\n", f.Origin.LegalNotice)
	return b.String()
}

func renderDay(b *strings.Builder, day Day) {
	if day.Date != nil {
		fmt.Fprintf(b, "\n📅 DATE: %s\n", *day.Date)
		b.WriteString(dateRule + "\n")
	}

	renderPointSeries(b, "🌡️  TEMPERATURE", unitCelsius, day.Temperature)
	renderPointSeries(b, "🌡️  THERMAL SENSATION", unitCelsius, day.ThermalSensation)
	renderPointSeries(b, "💧 RELATIVE HUMIDITY", unitPercent, day.Humidity)

	renderPeriodValues(b, "🌧️  PRECIPITATION PROBABILITY:", day.Precipitation, noPrecip, unitPercent)
	renderPeriodValues(b, "❄️  SNOW LEVEL:", day.SnowLevel, noValue, "m")
	renderSky(b, day.Sky)
	renderWind(b, day.Wind)
	renderPeriodValues(b, "💨 MAX WIND GUST:", day.Gust, noValue, " km/h")

	if hasText(day.UVMax) {
		fmt.Fprintf(b, "\n☀️  UV INDEX (max): %s\n", *day.UVMax)
	}

	b.WriteString("\n" + headerRule + "\n")
}

// renderPointSeries always prints the range; hourly lines need both an hour
// and a non-empty value.
func renderPointSeries(b *strings.Builder, title, unit string, ps PointSeries) {
	fmt.Fprintf(b, "\n%s: %d%s - %d%s\n", title, ps.Min, unit, ps.Max, unit)
	for _, r := range ps.Readings {
		if r.Hour == nil || !hasText(r.Value) {
			continue
		}
		fmt.Fprintf(b, "%s%02d:00 → %s%s\n", reportIndent, *r.Hour, *r.Value, unit)
	}
}

func renderPeriodValues(b *strings.Builder, title string, entries []PeriodValue, def, suffix string) {
	var lines []string
	for _, e := range entries {
		if !hasText(e.Value) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s → %s%s", orDefault(e.Period, allDay), orDefault(e.Value, def), suffix))
	}
	writeSection(b, title, lines)
}

func renderSky(b *strings.Builder, entries []SkyCondition) {
	var lines []string
	for _, e := range entries {
		if !hasText(e.Description) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s → %s", orDefault(e.Period, allDay), orDefault(e.Description, noValue)))
	}
	writeSection(b, "☁️  SKY CONDITION:", lines)
}

// renderWind lists an entry when either field is set. Direction and speed
// are printed as-is, so one of them may be blank.
func renderWind(b *strings.Builder, entries []Wind) {
	var lines []string
	for _, e := range entries {
		if e.Direction == "" && e.Speed == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s → %s at %s km/h", orDefault(e.Period, allDay), e.Direction, e.Speed))
	}
	writeSection(b, "💨 WIND:", lines)
}

// writeSection emits nothing at all when no line qualified.
func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, l := range lines {
		b.WriteString(reportIndent + l + "\n")
	}
}
