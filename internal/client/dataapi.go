package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/metrics"
	"github.com/agbru/tabulate/internal/record"
)

// ServiceDataAPI names the data API in logs, metrics and errors.
const ServiceDataAPI = "Data API"

// DefaultURLLengthLimit is the longest URL sent with GET.
const DefaultURLLengthLimit = 2000

// GeoTypeReplacer returns the geo type renames for an endpoint path.
type GeoTypeReplacer interface {
	GeoTypeReplacements(path string) map[string]string
}

// DataAPIConfig configures a DataAPIClient.
type DataAPIConfig struct {
	// Host replaces the host of every endpoint URL when set.
	Host           string
	APIKey         string
	ProxyURL       string
	URLLengthLimit int
}

// DataQuery is one call to the data API.
type DataQuery struct {
	// URL is the endpoint as found in the metadata.
	URL       string
	Variables []string
	GeoTypeID string
	GeoIDs    []string
	InClause  string
	GeoFormat string
	// Filters is appended after the geography clause, for example
	// "&NAICS2017=23&RACE_GROUP=1".
	Filters string
}

// DataAPIClient fetches tables from the statistical data API.
type DataAPIClient struct {
	cfg          DataAPIConfig
	replacements GeoTypeReplacer
	http         *http.Client
	limiter      *rate.Limiter
	metrics      *metrics.Collectors
	logger       logging.Logger
}

// Option configures the clients of this package.
type Option func(*options)

type options struct {
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.Collectors
	logger  logging.Logger
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.http = c } }

// WithRateLimit caps upstream calls per second. Zero or less disables the
// limit.
func WithRateLimit(rps float64) Option {
	return func(o *options) {
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLimiter shares an existing limiter between clients.
func WithLimiter(l *rate.Limiter) Option { return func(o *options) { o.limiter = l } }

// WithMetrics sets the collectors.
func WithMetrics(m *metrics.Collectors) Option { return func(o *options) { o.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(o *options) { o.logger = l } }

func buildOptions(opts []Option) options {
	o := options{
		http:    &http.Client{Timeout: 60 * time.Second},
		metrics: metrics.Nop(),
		logger:  logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewDataAPIClient creates a data API client.
func NewDataAPIClient(cfg DataAPIConfig, replacements GeoTypeReplacer, opts ...Option) *DataAPIClient {
	if cfg.URLLengthLimit <= 0 {
		cfg.URLLengthLimit = DefaultURLLengthLimit
	}
	o := buildOptions(opts)
	return &DataAPIClient{
		cfg:          cfg,
		replacements: replacements,
		http:         o.http,
		limiter:      o.limiter,
		metrics:      o.metrics,
		logger:       o.logger,
	}
}

// Fetch runs the query and returns the response table. A 204 response
// yields an empty table.
func (c *DataAPIClient) Fetch(ctx context.Context, q DataQuery) (record.Table, error) {
	parsed, err := url.Parse(q.URL)
	if err != nil {
		return record.Table{}, apperrors.WrapError(err, "parsing data API url %s", q.URL)
	}
	apiURL := q.URL
	if c.cfg.Host != "" && parsed.Host != "" {
		rehosted := *parsed
		rehosted.Host = c.cfg.Host
		apiURL = rehosted.String()
	}

	geoTypeID := q.GeoTypeID
	reverse := make(map[string]string)
	if c.replacements != nil {
		if renamed, ok := c.replacements.GeoTypeReplacements(parsed.Path)[geoTypeID]; ok && renamed != "" {
			geoTypeID = renamed
		}
	}
	if geoTypeID != q.GeoTypeID {
		reverse[geoTypeID] = q.GeoTypeID
	}

	sep := "&"
	if !strings.Contains(apiURL, "?") {
		sep = "?"
	}
	full := apiURL + sep + "get=" + strings.Join(q.Variables, ",") +
		GeoClause(q.GeoFormat, geoTypeID, q.GeoIDs, q.InClause) + q.Filters

	ctx, span := metrics.StartSpan(ctx, "client.DataAPI.Fetch")
	table, proxied, err := c.do(ctx, full)
	metrics.EndSpan(span, err)
	if err != nil {
		return record.Table{}, err
	}
	if proxied {
		c.metrics.Proxied()
	}
	return fixResponse(full, table, reverse), nil
}

// GeoClause builds the geography part of a data API query. With a
// GeoFormat template, its "?"-separated pieces are filled in: "&for=" and
// "&${GEOTYPEID}" pieces receive the geo type and ids, "&in=" pieces the
// in clause. Pieces lacking their inputs are dropped. Without a template
// the clause is "&for=<geoType>:<ids>" plus "&in=<inClause>".
func GeoClause(geoFormat, geoTypeID string, geoIDs []string, inClause string) string {
	if geoFormat == "" {
		if len(geoIDs) == 0 {
			return ""
		}
		clause := "&for=" + geoTypeID + ":" + strings.Join(geoIDs, ",")
		if inClause != "" {
			clause += "&in=" + inClause
		}
		return clause
	}

	ids := geoIDs
	if geoTypeID == "us" && len(ids) > 0 && ids[0] == "" {
		ids = append([]string{"1"}, ids[1:]...)
	}

	var b strings.Builder
	for _, piece := range strings.Split(geoFormat, "?") {
		if (strings.HasPrefix(piece, "&for=") || strings.HasPrefix(piece, "&${GEOTYPEID}")) && geoTypeID != "" && len(ids) > 0 {
			b.WriteString(interpolate(piece, map[string]string{
				"geoTypeId": geoTypeID,
				"geotypeId": geoTypeID,
				"GEOTYPEID": strings.ToUpper(geoTypeID),
				"geoIds":    strings.Join(ids, ","),
			}))
		}
		if strings.HasPrefix(piece, "&in=") && inClause != "" {
			b.WriteString(interpolate(piece, map[string]string{"inClause": inClause}))
		}
	}
	return b.String()
}

func interpolate(template string, params map[string]string) string {
	pairs := make([]string, 0, 2*len(params))
	for name, value := range params {
		pairs = append(pairs, "${"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func (c *DataAPIClient) do(ctx context.Context, full string) (record.Table, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return record.Table{}, false, err
		}
	}

	var (
		req     *http.Request
		err     error
		proxied = len(full) >= c.cfg.URLLengthLimit
	)
	if proxied {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ProxyURL, strings.NewReader(full))
		if err == nil {
			req.Header.Set("Content-Type", "text/plain")
		}
	} else {
		target := full
		if c.cfg.APIKey != "" {
			target += "&key=" + url.QueryEscape(c.cfg.APIKey)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	}
	if err != nil {
		return record.Table{}, proxied, apperrors.WrapError(err, "building data API request")
	}

	start := time.Now()
	done := c.metrics.UpstreamStarted(ServiceDataAPI)
	table, err := c.send(req, full)
	done(err)

	fields := []logging.Field{
		logging.String("service", ServiceDataAPI),
		logging.String("url", full),
		logging.Bool("proxy", proxied),
		logging.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.logger.Error("service error", err, fields...)
		return record.Table{}, proxied, err
	}
	c.logger.Debug("service success", fields...)
	return table, proxied, nil
}

func (c *DataAPIClient) send(req *http.Request, logURL string) (record.Table, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return record.Table{}, ctxErr
		}
		return record.Table{}, apperrors.TransportError{Service: ServiceDataAPI, URL: logURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return record.Table{}, apperrors.TransportError{Service: ServiceDataAPI, URL: logURL, Status: resp.StatusCode}
	}
	if resp.StatusCode == http.StatusNoContent {
		return record.Table{}, nil
	}

	var raw [][]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return record.Table{}, apperrors.TransportError{Service: ServiceDataAPI, URL: logURL, Cause: err}
	}
	if len(raw) == 0 {
		return record.Table{}, nil
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		if s := cellText(h); s != nil {
			header[i] = *s
		}
	}
	rows := make([][]*string, len(raw)-1)
	for r, row := range raw[1:] {
		cells := make([]*string, len(row))
		for i, v := range row {
			cells[i] = cellText(v)
		}
		rows[r] = cells
	}
	return record.Table{Header: header, Rows: rows}, nil
}

// cellText renders a decoded JSON cell. Null stays nil.
func cellText(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return &x
	case float64:
		return record.Str(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		return record.Str(strconv.FormatBool(x))
	default:
		return record.Str(fmt.Sprint(x))
	}
}

// fixResponse applies the response corrections: the ZIP code column name,
// the geo type renames and the QWI flag values that do not mark
// suppression.
func fixResponse(requestURL string, t record.Table, reverse map[string]string) record.Table {
	if t.Empty() {
		return t
	}
	header := make([]string, len(t.Header))
	zipFixed := false
	for i, h := range t.Header {
		if h == "zip code" && !zipFixed {
			h = "zip code tabulation area"
			zipFixed = true
		}
		if orig, ok := reverse[h]; ok {
			h = orig
		}
		header[i] = h
	}

	rows := t.Rows
	if strings.Contains(requestURL, "/data/timeseries/qwi/sa") || strings.Contains(requestURL, "/data/timeseries/qwi/se") {
		rows = make([][]*string, len(t.Rows))
		for r, row := range t.Rows {
			fixed := make([]*string, len(row))
			for i, v := range row {
				if i < len(header) && strings.HasPrefix(header[i], "s") && v != nil && (*v == "1" || *v == "9") {
					v = record.Str("")
				}
				fixed[i] = v
			}
			rows[r] = fixed
		}
	}
	return record.Table{Header: header, Rows: rows}
}
