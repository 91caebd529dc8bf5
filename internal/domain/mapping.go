package domain

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wire shapes of localidades.xsd. Every element that the schema marks as
// required is a pointer here so that absence can be told apart from an empty
// value and reported, instead of silently decoding to "".

type xmlRoot struct {
	XMLName     xml.Name       `xml:"root"`
	ID          *string        `xml:"id,attr"`
	Version     *string        `xml:"version,attr"`
	Origin      *xmlOrigin     `xml:"origen"`
	GeneratedAt *string        `xml:"elaborado"`
	Name        *string        `xml:"nombre"`
	Province    *string        `xml:"provincia"`
	Prediction  *xmlPrediction `xml:"prediccion"`
}

type xmlOrigin struct {
	Producer    *string `xml:"productor"`
	Web         *string `xml:"web"`
	Link        *string `xml:"enlace"`
	Language    *string `xml:"language"`
	Copyright   *string `xml:"copyright"`
	LegalNotice *string `xml:"nota_legal"`
}

type xmlPrediction struct {
	Days []xmlDay `xml:"dia"`
}

type xmlDay struct {
	Date             *string          `xml:"fecha,attr"`
	Precipitation    []xmlPeriodValue `xml:"prob_precipitacion"`
	SnowLevel        []xmlPeriodValue `xml:"cota_nieve_prov"`
	Sky              []xmlSky         `xml:"estado_cielo"`
	Wind             []xmlWind        `xml:"viento"`
	Gust             []xmlPeriodValue `xml:"racha_max"`
	Temperature      *xmlPointSeries  `xml:"temperatura"`
	ThermalSensation *xmlPointSeries  `xml:"sens_termica"`
	Humidity         *xmlPointSeries  `xml:"humedad_relativa"`
	UVMax            *string          `xml:"uv_max"`
}

type xmlPeriodValue struct {
	Period *string `xml:"periodo,attr"`
	Text   string  `xml:",chardata"`
}

type xmlSky struct {
	Period      *string `xml:"periodo,attr"`
	Description *string `xml:"descripcion,attr"`
	Text        string  `xml:",chardata"`
}

type xmlWind struct {
	Period    *string `xml:"periodo,attr"`
	Direction string  `xml:"direccion"`
	Speed     string  `xml:"velocidad"`
}

type xmlPointSeries struct {
	Max      *string      `xml:"maxima"`
	Min      *string      `xml:"minima"`
	Readings []xmlReading `xml:"dato"`
}

type xmlReading struct {
	Hour *string `xml:"hora,attr"`
	Text string  `xml:",chardata"`
}

// ParseForecast maps decoded document text into a Forecast. Structural
// problems (malformed XML, wrong root, missing required elements, numbers
// outside -128..127) are returned wrapped in ErrMapping.
func ParseForecast(text string) (Forecast, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	// The prolog still declares ISO-8859-15, but the text was already decoded
	// upstream, so the declared charset is ignored.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root xmlRoot
	if err := dec.Decode(&root); err != nil {
		return Forecast{}, fmt.Errorf("%w: decode document: %v", ErrMapping, err)
	}
	return mapRoot(root)
}

func mapRoot(root xmlRoot) (Forecast, error) {
	origin, err := mapOrigin(root.Origin)
	if err != nil {
		return Forecast{}, err
	}

	f := Forecast{
		ID:     trimmedPtr(root.ID),
		Origin: origin,
	}

	if root.Version != nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(*root.Version), 64)
		if err != nil {
			return Forecast{}, fmt.Errorf("%w: root@version %q is not a number", ErrMapping, *root.Version)
		}
		f.Version = &v
	}

	if f.GeneratedAt, err = required("elaborado", root.GeneratedAt); err != nil {
		return Forecast{}, err
	}
	if f.Location, err = required("nombre", root.Name); err != nil {
		return Forecast{}, err
	}
	if f.Province, err = required("provincia", root.Province); err != nil {
		return Forecast{}, err
	}

	var rawDays []xmlDay
	if root.Prediction != nil {
		rawDays = root.Prediction.Days
	}
	f.Days = make([]Day, 0, len(rawDays))
	for i, raw := range rawDays {
		day, err := mapDay(fmt.Sprintf("prediccion/dia[%d]", i), raw)
		if err != nil {
			return Forecast{}, err
		}
		f.Days = append(f.Days, day)
	}

	return f, nil
}

func mapOrigin(raw *xmlOrigin) (Origin, error) {
	if raw == nil {
		return Origin{}, missing("origen")
	}

	var o Origin
	fields := []struct {
		path string
		src  *string
		dst  *string
	}{
		{"origen/productor", raw.Producer, &o.Producer},
		{"origen/web", raw.Web, &o.Web},
		{"origen/enlace", raw.Link, &o.Link},
		{"origen/language", raw.Language, &o.Language},
		{"origen/copyright", raw.Copyright, &o.Copyright},
		{"origen/nota_legal", raw.LegalNotice, &o.LegalNotice},
	}
	for _, f := range fields {
		v, err := required(f.path, f.src)
		if err != nil {
			return Origin{}, err
		}
		*f.dst = v
	}
	return o, nil
}

func mapDay(path string, raw xmlDay) (Day, error) {
	day := Day{
		Date:          trimmedPtr(raw.Date),
		Precipitation: mapPeriodValues(raw.Precipitation),
		SnowLevel:     mapPeriodValues(raw.SnowLevel),
		Gust:          mapPeriodValues(raw.Gust),
		Sky:           make([]SkyCondition, 0, len(raw.Sky)),
		Wind:          make([]Wind, 0, len(raw.Wind)),
		UVMax:         trimmedPtr(raw.UVMax),
	}

	for _, s := range raw.Sky {
		day.Sky = append(day.Sky, SkyCondition{
			Period:      trimmedPtr(s.Period),
			Description: trimmedPtr(s.Description),
			Value:       textPtr(s.Text),
		})
	}
	for _, w := range raw.Wind {
		day.Wind = append(day.Wind, Wind{
			Period:    trimmedPtr(w.Period),
			Direction: strings.TrimSpace(w.Direction),
			Speed:     strings.TrimSpace(w.Speed),
		})
	}

	var err error
	if day.Temperature, err = mapPointSeries(path+"/temperatura", raw.Temperature); err != nil {
		return Day{}, err
	}
	if day.ThermalSensation, err = mapPointSeries(path+"/sens_termica", raw.ThermalSensation); err != nil {
		return Day{}, err
	}
	if day.Humidity, err = mapPointSeries(path+"/humedad_relativa", raw.Humidity); err != nil {
		return Day{}, err
	}

	return day, nil
}

func mapPeriodValues(raw []xmlPeriodValue) []PeriodValue {
	out := make([]PeriodValue, 0, len(raw))
	for _, pv := range raw {
		out = append(out, PeriodValue{
			Period: trimmedPtr(pv.Period),
			Value:  textPtr(pv.Text),
		})
	}
	return out
}

func mapPointSeries(path string, raw *xmlPointSeries) (PointSeries, error) {
	if raw == nil {
		return PointSeries{}, missing(path)
	}

	maxText, err := required(path+"/maxima", raw.Max)
	if err != nil {
		return PointSeries{}, err
	}
	minText, err := required(path+"/minima", raw.Min)
	if err != nil {
		return PointSeries{}, err
	}

	ps := PointSeries{Readings: make([]Reading, 0, len(raw.Readings))}
	if ps.Max, err = parseInt8(path+"/maxima", maxText); err != nil {
		return PointSeries{}, err
	}
	if ps.Min, err = parseInt8(path+"/minima", minText); err != nil {
		return PointSeries{}, err
	}

	for i, r := range raw.Readings {
		reading := Reading{Value: textPtr(r.Text)}
		if r.Hour != nil {
			h, err := parseInt8(fmt.Sprintf("%s/dato[%d]@hora", path, i), *r.Hour)
			if err != nil {
				return PointSeries{}, err
			}
			reading.Hour = &h
		}
		ps.Readings = append(ps.Readings, reading)
	}

	return ps, nil
}

// parseInt8 parses a base-10 integer that must fit in -128..127.
func parseInt8(path, s string) (int8, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer in -128..127", ErrMapping, path, s)
	}
	return int8(n), nil
}

func required(path string, s *string) (string, error) {
	if s == nil {
		return "", missing(path)
	}
	return strings.TrimSpace(*s), nil
}

func missing(path string) error {
	return fmt.Errorf("%w: missing required element %s", ErrMapping, path)
}

// trimmedPtr keeps presence but normalizes surrounding whitespace.
func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// textPtr maps element text to an optional value: empty text is absent.
func textPtr(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}
