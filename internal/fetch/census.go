package fetch

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/tabulate/internal/client"
	apperrors "github.com/agbru/tabulate/internal/errors"
	"github.com/agbru/tabulate/internal/logging"
	"github.com/agbru/tabulate/internal/merge"
	"github.com/agbru/tabulate/internal/metadata"
	"github.com/agbru/tabulate/internal/metrics"
	"github.com/agbru/tabulate/internal/namber"
	"github.com/agbru/tabulate/internal/partition"
	"github.com/agbru/tabulate/internal/record"
)

// DefaultColumnLimit is the number of columns requested per data API call.
const DefaultColumnLimit = 50

const nationGeoType = "nation"

// Endpoints whose nation row is keyed "1" instead of "00".
var nationAsOnePaths = []string{"/2018/nonemp", "/2018/cbp", "/2017/cbp", "/2017/abscs", "/2017/ecnbasic"}

// PlaceLookup is the metadata the Census fetcher needs to address places
// and states.
type PlaceLookup interface {
	PlaceMapping(geoID string) (metadata.PlaceMappingEntry, bool)
	StatePostalCode(fips string) (string, error)
	StateFIPSCode(postal string) (string, error)
}

// Census fetches partitions from the statistical data API.
type Census struct {
	api         DataAPI
	places      PlaceLookup
	columnLimit int
	logger      logging.Logger
}

// NewCensus creates a Census fetcher. A column limit of zero or less uses
// DefaultColumnLimit.
func NewCensus(api DataAPI, places PlaceLookup, columnLimit int, logger logging.Logger) *Census {
	if columnLimit <= 0 {
		columnLimit = DefaultColumnLimit
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Census{api: api, places: places, columnLimit: columnLimit, logger: logger}
}

// geoData holds the rows of one response by geography key and industry
// bucket.
type geoData map[string]map[string][]record.Row

// query is one geography selection of a data API request.
type query struct {
	field         string
	attrs         map[string]string
	apiFields     []string
	geoFields     []string
	geoIDs        []string
	includeGeoIDs []string
}

// Fetch implements Fetcher.
//
// For geo types whose tiger ids need mapping, sources flagged for mapping
// are merged from the place query path and the others from the regular
// path; the two record lists are concatenated and merged by the caller.
func (c *Census) Fetch(ctx context.Context, req Request) ([]record.APIRecord, error) {
	ctx, span := metrics.StartSpan(ctx, "fetch.Census.Fetch")
	var err error
	defer func() { metrics.EndSpan(span, err) }()

	if len(req.Geographies) == 0 {
		return []record.APIRecord{}, nil
	}

	if !req.GeoType.MapTigerID {
		var recs []record.APIRecord
		recs, err = c.run(ctx, req, false, false, req.Partition.VariableParts)
		return recs, err
	}

	var mappable, regular []metadata.VarParts
	for i, vp := range req.Partition.VariableParts {
		if req.Partition.MapTigerIDs[i] {
			mappable = append(mappable, vp)
		} else {
			regular = append(regular, vp)
		}
	}

	results := make([][]record.APIRecord, 2)
	g, gctx := errgroup.WithContext(ctx)
	if len(mappable) > 0 {
		g.Go(func() error {
			recs, err := c.run(gctx, req, true, true, mappable)
			results[0] = recs
			return err
		})
	}
	if len(regular) > 0 {
		g.Go(func() error {
			recs, err := c.run(gctx, req, true, false, regular)
			results[1] = recs
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return append(results[0], results[1]...), nil
}

// run queries every column of the partition and merges the values of parts
// into one record per geography. Place query results are combined; for the
// regular path the last result wins.
func (c *Census) run(ctx context.Context, req Request, combine, mapTigerIDs bool, parts []metadata.VarParts) ([]record.APIRecord, error) {
	geos := req.Geographies
	var queries []query
	if mapTigerIDs {
		queries, geos = c.placeQueries(req.GeoType, geos)
	} else {
		q, err := c.regularQuery(req, geos)
		if err != nil {
			return nil, err
		}
		queries = []query{q}
	}

	results := make([]geoData, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			data, err := c.execute(gctx, req, q)
			results[i] = data
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := make(geoData)
	for _, r := range results {
		if !combine {
			data = r
			continue
		}
		for k, v := range r {
			data[k] = v
		}
	}
	return mergeCensus(req, geos, data, parts), nil
}

// placeQueries splits geographies into regular places and places queried
// as county subdivisions. The returned geographies carry the county of
// mapped subdivisions.
func (c *Census) placeQueries(gt metadata.GeoType, geos []record.DetailedGeo) ([]query, []record.DetailedGeo) {
	var (
		nonMCDIDs, mcdIDs []string
		nonMCD, mcd       []record.DetailedGeo
		adjusted          = make([]record.DetailedGeo, 0, len(geos))
	)
	for _, geo := range geos {
		entry, ok := c.places.PlaceMapping(geo.Attr(gt.GeoIDField))
		if ok && entry.County != "" {
			geo = geo.WithAttr("COUNTY", entry.County)
			mcdIDs = append(mcdIDs, geo.Attr(gt.GeoIDField))
			mcd = append(mcd, geo)
		} else {
			nonMCDIDs = append(nonMCDIDs, geo.Attr(gt.TigerIDField))
			nonMCD = append(nonMCD, geo)
		}
		adjusted = append(adjusted, geo)
	}

	var queries []query
	if len(nonMCDIDs) > 0 {
		queries = append(queries, query{
			field:     gt.DataAPIIDField,
			attrs:     nonMCD[0].Attributes,
			apiFields: nonEmptyFields(gt.DataAPIPartitionFields),
			geoFields: nonEmptyFields(gt.TigerPartitionFields),
			geoIDs:    nonMCDIDs,
		})
	}
	if len(mcdIDs) > 0 {
		queries = append(queries, query{
			field:         merge.CountySubdivisionColumn,
			attrs:         mcd[0].Attributes,
			apiFields:     []string{merge.StateColumn},
			geoFields:     []string{"STATE"},
			geoIDs:        []string{"*"},
			includeGeoIDs: mcdIDs,
		})
	}
	return queries, adjusted
}

func (c *Census) regularQuery(req Request, geos []record.DetailedGeo) (query, error) {
	gt := req.GeoType
	var ids []string
	if req.Partition.MapsState() && gt.MapStateID {
		postal, err := c.places.StatePostalCode(geos[len(geos)-1].Attr(gt.TigerIDField))
		if err != nil {
			return query{}, err
		}
		ids = []string{postal}
	} else {
		ids = make([]string, 0, len(geos))
		for _, geo := range geos {
			ids = append(ids, nationGeoID(gt, req.Partition.APIURL, geo.Attr(gt.TigerIDField)))
		}
		ids = strings.Split(strings.Join(ids, ","), ",")
	}
	return query{
		field:     gt.DataAPIIDField,
		attrs:     geos[0].Attributes,
		apiFields: nonEmptyFields(gt.DataAPIPartitionFields),
		geoFields: nonEmptyFields(gt.TigerPartitionFields),
		geoIDs:    ids,
	}, nil
}

// nationGeoID returns the id the endpoint knows the nation by. Other geo
// types keep their tiger id.
func nationGeoID(gt metadata.GeoType, apiURL, tigerID string) string {
	if gt.ID != nationGeoType {
		return tigerID
	}
	if strings.Contains(apiURL, "/intltrade") {
		return ""
	}
	id := tigerID
	if !strings.Contains(apiURL, "/acs5") {
		id = "00"
	}
	for _, p := range nationAsOnePaths {
		if strings.Contains(apiURL, p) {
			return "1"
		}
	}
	return id
}

func nonEmptyFields(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	return record.CreateOutFields(fields...)
}

// execute runs one geography selection in column chunks and buckets the
// merged rows by geography and industry.
func (c *Census) execute(ctx context.Context, req Request, q query) (geoData, error) {
	p := req.Partition

	var inClause string
	if len(q.geoFields) > 0 && q.geoFields[0] != "" {
		pairs := make([]string, len(q.geoFields))
		for i, f := range q.geoFields {
			api := ""
			if i < len(q.apiFields) {
				api = q.apiFields[i]
			}
			pairs[i] = api + ":" + q.attrs[f]
		}
		inClause = strings.Join(pairs, " ")
	}

	columns := record.Distinct(selectColumns(p.VariableParts))
	chunks := chunkColumns(columns, c.columnLimit)
	filters := filterParams(p, req.IndustryIDs)

	tables := make([]record.Table, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, cols := range chunks {
		g.Go(func() error {
			t, err := c.api.Fetch(gctx, client.DataQuery{
				URL:       p.APIURL,
				Variables: cols,
				GeoTypeID: q.field,
				GeoIDs:    q.geoIDs,
				InClause:  inClause,
				GeoFormat: p.GeoFormat,
				Filters:   filters,
			})
			tables[i] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		msg := delayMessage(req.GeoType, q.geoIDs)
		c.logger.Warn("data API query failed", logging.String("user_message", msg), logging.String("url", p.APIURL), logging.Err(err))
		return nil, apperrors.WrapError(err, "%s", msg)
	}

	rows := merge.ToRows(merge.ConvertParams{
		Partition:     p,
		Merged:        merge.MergeColumnPartitions(tables, columns),
		IncludeGeoIDs: q.includeGeoIDs,
		IncludePlaces: req.GeoType.ID == "place" && q.includeGeoIDs != nil,
	})
	return c.byGeoAndIndustry(req, rows)
}

// selectColumns lists stats, then flags, then margins of error.
func selectColumns(parts []metadata.VarParts) []string {
	var stats, flags, moes []string
	for _, vp := range parts {
		if vp.Stat.Name != "" {
			stats = append(stats, vp.Stat.Name)
		}
		if vp.Flag != nil && vp.Flag.Name != "" {
			flags = append(flags, vp.Flag.Name)
		}
		if vp.MOE != nil && vp.MOE.Name != "" {
			moes = append(moes, vp.MOE.Name)
		}
	}
	return append(append(stats, flags...), moes...)
}

func chunkColumns(cols []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(cols); start += size {
		out = append(out, cols[start:min(start+size, len(cols))])
	}
	return out
}

// filterParams returns the industry and group filters of the partition as
// query parameters.
func filterParams(p *partition.Partition, industryIDs []string) string {
	var b strings.Builder
	if p.ParamInd != "" {
		for _, id := range industryIDs {
			b.WriteString("&" + p.ParamInd + "=" + id)
		}
	}
	for _, g := range p.RaceGroups {
		b.WriteString("&" + merge.RaceGroupColumn + "=")
		b.WriteString(strconv.Itoa(g))
	}
	if p.SexGroups != nil {
		b.WriteString("&" + strings.Join(p.SexGroups, "&"))
	}
	if p.VetGroups != nil {
		b.WriteString("&" + strings.Join(p.VetGroups, "&"))
	}
	return b.String()
}

func delayMessage(gt metadata.GeoType, geoIDs []string) string {
	msg := "Experiencing delay while fetching data for "
	if len(geoIDs) > 1 {
		if gt.DataAPIIDField == "County" {
			return msg + "Counties"
		}
		return msg + gt.DataAPIIDField + "s"
	}
	return msg + gt.DataAPIIDField
}

// byGeoAndIndustry keys rows by their tiger FIPS name and industry bucket.
func (c *Census) byGeoAndIndustry(req Request, rows []record.Row) (geoData, error) {
	gt := req.GeoType
	p := req.Partition
	dataFIPS := record.CreateOutFields(gt.DataAPIFIPSFields...)
	tigerFIPS := record.CreateOutFields(gt.TigerFIPSFields...)

	out := make(geoData)
	for _, row := range rows {
		name := nationGeoType
		if gt.ID != nationGeoType {
			var b strings.Builder
			for i, field := range dataFIPS {
				value, _ := row.Value(field)
				if p.MapsState() {
					postal, _ := row.Value(strings.ToUpper(field))
					fips, err := c.places.StateFIPSCode(postal)
					if err != nil {
						return nil, err
					}
					value = fips
				}
				if i < len(tigerFIPS) {
					b.WriteString(tigerFIPS[i])
				}
				b.WriteString("=" + value)
			}
			name = b.String()
		}

		buckets, ok := out[name]
		if !ok {
			buckets = map[string][]record.Row{record.NoIndustryID: nil}
			for _, id := range req.IndustryIDs {
				buckets[record.IndustryLikeID(id)] = nil
			}
			out[name] = buckets
		}
		bucket := record.NoIndustryID
		if p.ParamInd != "" {
			industry, _ := row.Value(p.ParamInd)
			bucket = record.IndustryLikeID(industry)
		}
		buckets[bucket] = append(buckets[bucket], row)
	}
	return out, nil
}

// mergeCensus builds one record per geography from the bucketed rows.
func mergeCensus(req Request, geos []record.DetailedGeo, data geoData, parts []metadata.VarParts) []record.APIRecord {
	gt := req.GeoType
	tigerFIPS := record.CreateOutFields(gt.TigerFIPSFields...)
	ids := industries(req.Partition, req.IndustryIDs)

	out := make([]record.APIRecord, 0, len(geos))
	for _, geo := range geos {
		rec := record.NewAPIRecord(gt.ID, geo)
		name := nationGeoType
		if gt.ID != nationGeoType {
			var b strings.Builder
			for _, f := range tigerFIPS {
				b.WriteString(f + "=" + geo.Attr(f))
			}
			name = b.String()
		}

		buckets, ok := data[name]
		for _, industryID := range ids {
			if !ok {
				storeUnavailable(rec, industryID, parts)
				continue
			}
			for _, vp := range parts {
				for _, row := range buckets[record.IndustryLikeID(industryID)] {
					if !row.Has(vp.Stat.Alias) {
						continue
					}
					stat, moe := censusValues(row, vp)
					store(rec, industryID, vp, stat, moe)
				}
			}
		}
		out = append(out, rec)
	}
	return out
}

// censusValues reads the stat and margin of error of one source from a
// row. A non-empty flag suppresses the value.
func censusValues(row record.Row, vp metadata.VarParts) (namber.Namber, namber.Namber) {
	if vp.Flag != nil {
		if flag, ok := row.Value(vp.Flag.Alias); ok && flag != "" {
			return suppressed(flag), namber.NA("")
		}
	}
	moe := namber.NA("")
	if vp.MOE != nil {
		if v, ok := row.Value(vp.MOE.Alias); ok && v != "" {
			moe = namber.Parse(record.TranslateToAnnotation(v))
		}
	}
	stat, _ := row.Value(vp.Stat.Alias)
	if !namber.IsNumberLike(stat) {
		return namber.NA(""), namber.NA("")
	}
	return namber.Parse(stat), moe
}
