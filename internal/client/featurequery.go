package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/metrics"
)

// ServiceFeatureQuery names the feature query service in logs, metrics and
// errors.
const ServiceFeatureQuery = "Consumer Data API"

// DefaultPageSize is the number of features requested per page.
const DefaultPageSize = 1000

// SQLNoOp is the where clause matching every feature.
const SQLNoOp = "1=1"

// DefaultInClauseSize is the number of values per IN list.
const DefaultInClauseSize = 500

// FeatureQuery selects features from a layer.
type FeatureQuery struct {
	Where     string
	OutFields []string
	OrderBy   []string
}

// Feature is one returned feature. Attribute values keep their JSON types.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
}

// Attr returns an attribute rendered as text and whether it is present and
// non-null.
func (f Feature) Attr(name string) (string, bool) {
	v, ok := f.Attributes[name]
	if !ok || v == nil {
		return "", false
	}
	s := cellText(v)
	return *s, true
}

type featurePage struct {
	Features              []Feature `json:"features"`
	ExceededTransferLimit bool      `json:"exceededTransferLimit"`
	Error                 *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// FeatureQueryClient pages through a feature query service.
type FeatureQueryClient struct {
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
	metrics  *metrics.Collectors
	logger   logging.Logger
}

// NewFeatureQueryClient creates a client. A page size of zero or less uses
// DefaultPageSize.
func NewFeatureQueryClient(pageSize int, opts ...Option) *FeatureQueryClient {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	o := buildOptions(opts)
	return &FeatureQueryClient{
		pageSize: pageSize,
		http:     o.http,
		limiter:  o.limiter,
		metrics:  o.metrics,
		logger:   o.logger,
	}
}

// Query fetches every page of the query from the layer at layerURL.
func (c *FeatureQueryClient) Query(ctx context.Context, layerURL string, q FeatureQuery) ([]Feature, error) {
	ctx, span := metrics.StartSpan(ctx, "client.FeatureQuery.Query")
	var (
		all []Feature
		err error
	)
	defer func() { metrics.EndSpan(span, err) }()

	for page := 0; ; page++ {
		var p featurePage
		p, err = c.page(ctx, layerURL, q, page*c.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Features...)
		if !p.ExceededTransferLimit {
			return all, nil
		}
	}
}

func (c *FeatureQueryClient) page(ctx context.Context, layerURL string, q FeatureQuery, offset int) (featurePage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return featurePage{}, err
		}
	}

	full := strings.TrimSuffix(layerURL, "/") + "/query?" + queryValues(q, offset, c.pageSize).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, http.NoBody)
	if err != nil {
		return featurePage{}, apperrors.WrapError(err, "building feature query request")
	}

	start := time.Now()
	done := c.metrics.UpstreamStarted(ServiceFeatureQuery)
	p, err := c.send(req, layerURL)
	done(err)

	fields := []logging.Field{
		logging.String("service", ServiceFeatureQuery),
		logging.String("url", layerURL),
		logging.Int("offset", offset),
		logging.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.logger.Error("service error", err, fields...)
		return featurePage{}, err
	}
	c.logger.Debug("service success", append(fields, logging.Int("features", len(p.Features)))...)
	return p, nil
}

func (c *FeatureQueryClient) send(req *http.Request, layerURL string) (featurePage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return featurePage{}, ctxErr
		}
		return featurePage{}, apperrors.TransportError{Service: ServiceFeatureQuery, URL: layerURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return featurePage{}, apperrors.TransportError{Service: ServiceFeatureQuery, URL: layerURL, Status: resp.StatusCode}
	}

	var p featurePage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return featurePage{}, apperrors.TransportError{Service: ServiceFeatureQuery, URL: layerURL, Cause: err}
	}
	if p.Error != nil {
		return featurePage{}, apperrors.TransportError{
			Service: ServiceFeatureQuery,
			URL:     layerURL,
			Cause:   errors.Newf("%d %s", p.Error.Code, p.Error.Message),
		}
	}
	return p, nil
}

func queryValues(q FeatureQuery, offset, size int) url.Values {
	where := strings.TrimSpace(q.Where)
	if where == "" {
		where = SQLNoOp
	}
	outFields := nonEmpty(q.OutFields)
	if len(outFields) == 0 {
		outFields = []string{"*"}
	}

	v := url.Values{}
	v.Set("where", where)
	v.Set("outFields", strings.Join(outFields, ","))
	if orderBy := nonEmpty(q.OrderBy); len(orderBy) > 0 {
		v.Set("orderByFields", strings.Join(orderBy, ","))
	}
	v.Set("returnGeometry", "false")
	v.Set("resultOffset", strconv.Itoa(offset))
	v.Set("resultRecordCount", strconv.Itoa(size))
	v.Set("f", "json")
	return v
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// InClause builds "(col IN ('a','b') OR col IN ('c'))" with at most
// chunkSize values per IN list, or SQLNoOp for no values.
func InClause(column string, values []string, chunkSize int) string {
	if len(values) == 0 {
		return SQLNoOp
	}
	if chunkSize <= 0 {
		chunkSize = DefaultInClauseSize
	}
	var lists []string
	for start := 0; start < len(values); start += chunkSize {
		end := min(start+chunkSize, len(values))
		quoted := make([]string, 0, end-start)
		for _, v := range values[start:end] {
			quoted = append(quoted, "'"+v+"'")
		}
		lists = append(lists, column+" IN ("+strings.Join(quoted, ",")+")")
	}
	return "(" + strings.Join(lists, " OR ") + ")"
}
