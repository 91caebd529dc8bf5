package pipeline_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/meteo-forecast-etl/internal/config"
	"github.com/couchcryptid/meteo-forecast-etl/internal/domain"
	"github.com/couchcryptid/meteo-forecast-etl/internal/observability"
	"github.com/couchcryptid/meteo-forecast-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `<?xml version="1.0" encoding="ISO-8859-15"?>
<root id="45168" version="1.0">
  <origen>
    <productor>Agencia Estatal de Meteorología - AEMET. Gobierno de España</productor>
    <web>https://www.aemet.es</web>
    <enlace>https://www.aemet.es/es/eltiempo/prediccion/municipios/toledo-id45168</enlace>
    <language>es</language>
    <copyright>© AEMET.</copyright>
    <nota_legal>https://www.aemet.es/es/nota_legal</nota_legal>
  </origen>
  <elaborado>2024-04-26T08:00:00</elaborado>
  <nombre>Toledo</nombre>
  <provincia>Toledo</provincia>
  <prediccion>
    <dia fecha="2024-04-26">
      <prob_precipitacion periodo="00-24">10</prob_precipitacion>
      <estado_cielo periodo="00-24" descripcion="Despejado">11</estado_cielo>
      <viento periodo="00-24"><direccion>O</direccion><velocidad>20</velocidad></viento>
      <temperatura><maxima>24</maxima><minima>11</minima><dato hora="12">22</dato></temperatura>
      <sens_termica><maxima>24</maxima><minima>11</minima></sens_termica>
      <humedad_relativa><maxima>80</maxima><minima>30</minima></humedad_relativa>
      <uv_max>7</uv_max>
    </dia>
  </prediccion>
</root>`

// --- mocks ---

type mockSource struct {
	doc   string
	err   error
	calls int
	url   string
}

func (m *mockSource) FetchDocument(_ context.Context, url string) (string, error) {
	m.calls++
	m.url = url
	return m.doc, m.err
}

type mockDispatcher struct {
	err      error
	endpoint string
	payloads [][]byte
}

func (m *mockDispatcher) Dispatch(_ context.Context, endpoint string, payload []byte) error {
	m.endpoint = endpoint
	m.payloads = append(m.payloads, payload)
	return m.err
}

type mockArchiver struct {
	err     error
	reports []domain.ArchivedReport
}

func (m *mockArchiver) Archive(_ context.Context, report domain.ArchivedReport) error {
	m.reports = append(m.reports, report)
	return m.err
}

func testConfig() *config.Config {
	return &config.Config{
		SourceURL:   "https://www.aemet.es/xml/municipios/localidad_45168.xml",
		MailFrom:    "meteo@example.com",
		MailTo:      []string{"a@x.com", "b@y.com"},
		DispatchURL: "http://rustmail:8080/send",
		HTTPTimeout: 5 * time.Second,
	}
}

func expectedReport(t *testing.T) string {
	t.Helper()
	f, err := domain.ParseForecast(testDocument)
	require.NoError(t, err)
	return domain.RenderReport(f)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	src := &mockSource{doc: testDocument}
	disp := &mockDispatcher{}
	metrics := observability.NewMetrics()
	cfg := testConfig()

	p := pipeline.New(cfg, src, disp, nil, slog.Default(), metrics)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, cfg.SourceURL, src.url)
	assert.Equal(t, cfg.DispatchURL, disp.endpoint)
	require.Len(t, disp.payloads, 1)

	var req domain.MailRequest
	require.NoError(t, json.Unmarshal(disp.payloads[0], &req))
	assert.Equal(t, "meteo@example.com", req.Mail.From)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, req.Mail.To)
	assert.Equal(t, domain.MailSubject, req.Mail.Subject)
	assert.Equal(t, domain.MailEncoding, req.Mail.Encoding)

	text, err := base64.StdEncoding.DecodeString(req.Mail.Text)
	require.NoError(t, err)
	if diff := cmp.Diff(expectedReport(t), string(text)); diff != "" {
		t.Fatalf("dispatched report mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("success")), 0.0001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ForecastDays), 0.0001)
	assert.InDelta(t, float64(len(testDocument)), testutil.ToFloat64(metrics.DocumentBytes), 0.0001)
}

func TestPipeline_Run_MissingSetting(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*config.Config)
		key       string
		wantFetch int
	}{
		{"source url", func(c *config.Config) { c.SourceURL = "" }, "AEMET_LOCATION", 0},
		{"sender", func(c *config.Config) { c.MailFrom = "" }, "MAIL_FROM", 1},
		{"recipients", func(c *config.Config) { c.MailTo = nil }, "MAIL_TO", 1},
		{"dispatch url", func(c *config.Config) { c.DispatchURL = "" }, "RUSTMAIL_URL", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			src := &mockSource{doc: testDocument}
			disp := &mockDispatcher{}
			metrics := observability.NewMetrics()

			err := pipeline.New(cfg, src, disp, nil, slog.Default(), metrics).Run(context.Background())
			require.ErrorIs(t, err, domain.ErrConfigMissing)
			assert.Contains(t, err.Error(), tt.key)
			assert.Equal(t, tt.wantFetch, src.calls)
			assert.Empty(t, disp.payloads)
			assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.StageErrors.WithLabelValues("resolve", "config_missing")), 0.0001)
			assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("failure")), 0.0001)
		})
	}
}

func TestPipeline_Run_StageFailuresAbort(t *testing.T) {
	tests := []struct {
		name    string
		src     *mockSource
		wantErr error
		stage   string
		kind    string
	}{
		{
			name:    "fetch transport error",
			src:     &mockSource{err: fmt.Errorf("%w: download document: HTTP 404", domain.ErrTransport)},
			wantErr: domain.ErrTransport,
			stage:   "fetch",
			kind:    "transport",
		},
		{
			name:    "fetch decode error",
			src:     &mockSource{err: fmt.Errorf("%w: ISO-8859-15: bad byte", domain.ErrDecode)},
			wantErr: domain.ErrDecode,
			stage:   "fetch",
			kind:    "decode",
		},
		{
			name:    "mapping error",
			src:     &mockSource{doc: "<root><origen>"},
			wantErr: domain.ErrMapping,
			stage:   "map",
			kind:    "mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := &mockDispatcher{}
			metrics := observability.NewMetrics()

			err := pipeline.New(testConfig(), tt.src, disp, nil, slog.Default(), metrics).Run(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, disp.payloads)
			assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.StageErrors.WithLabelValues(tt.stage, tt.kind)), 0.0001)
		})
	}
}

func TestPipeline_Run_EmptyRecipientRejected(t *testing.T) {
	cfg := testConfig()
	cfg.MailTo = []string{"a@x.com", ""}
	disp := &mockDispatcher{}

	err := pipeline.New(cfg, &mockSource{doc: testDocument}, disp, nil, slog.Default(), observability.NewMetrics()).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrSerialization)
	assert.Empty(t, disp.payloads)
}

func TestPipeline_Run_DispatchFailure(t *testing.T) {
	disp := &mockDispatcher{err: fmt.Errorf("%w: send mail request: HTTP 502", domain.ErrTransport)}
	arch := &mockArchiver{}
	metrics := observability.NewMetrics()

	err := pipeline.New(testConfig(), &mockSource{doc: testDocument}, disp, arch, slog.Default(), metrics).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "dispatch")
	assert.Len(t, disp.payloads, 1, "dispatch is attempted exactly once")
	assert.Empty(t, arch.reports)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.LastSuccess), 0.0001)
}

func TestPipeline_Run_ArchivesDispatchedReport(t *testing.T) {
	now := time.Date(2024, 4, 26, 9, 30, 0, 0, time.UTC)
	pipeline.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { pipeline.SetClock(nil) })

	arch := &mockArchiver{}
	metrics := observability.NewMetrics()

	err := pipeline.New(testConfig(), &mockSource{doc: testDocument}, &mockDispatcher{}, arch, slog.Default(), metrics).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, arch.reports, 1)
	got := arch.reports[0]
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, "Toledo", got.Location)
	assert.Equal(t, 1, got.Days)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, got.Recipients)
	assert.Equal(t, expectedReport(t), got.Report)
	assert.True(t, now.Equal(got.DispatchedAt))
	assert.InDelta(t, float64(now.Unix()), testutil.ToFloat64(metrics.LastSuccess), 0.0001)
}

func TestPipeline_Run_ArchiveFailureIsNotFatal(t *testing.T) {
	arch := &mockArchiver{err: errors.New("broker unavailable")}
	disp := &mockDispatcher{}
	metrics := observability.NewMetrics()

	err := pipeline.New(testConfig(), &mockSource{doc: testDocument}, disp, arch, slog.Default(), metrics).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, disp.payloads, 1)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ArchiveErrors), 0.0001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("success")), 0.0001)
}

func TestPipeline_Run_UniqueRunIDs(t *testing.T) {
	arch := &mockArchiver{}
	p := pipeline.New(testConfig(), &mockSource{doc: testDocument}, &mockDispatcher{}, arch, slog.Default(), observability.NewMetrics())

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, arch.reports, 2)
	assert.NotEqual(t, arch.reports[0].RunID, arch.reports[1].RunID)
}
