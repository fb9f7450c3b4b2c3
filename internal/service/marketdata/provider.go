package marketdata

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"RateScope/internal/domain/models"
	"RateScope/internal/domain/repository"
	"RateScope/internal/rule"
	"RateScope/pkg/cache"
	phttp "RateScope/pkg/http"
	"RateScope/pkg/logger"
	"RateScope/pkg/util"
)

const (
	keyPolicyRate = "repo_rate"
	keyInflation  = "cpi"
	keyOutput     = "gdp"
)

// Sources configures where the direct provider pulls its series from
// and the coefficients to fall back to when calibration has too little
// data to work with.
type Sources struct {
	PolicyRateURL string
	EurostatBase  string
	GeoCode       string
	CacheTTL      time.Duration
	StartPeriod   string
	EndPeriod     string
	Defaults      models.RuleParameters
}

// seriesDocument is the cached form of one assembled monthly series.
type seriesDocument struct {
	Dates  []string   `json:"dates"`
	Values []*float64 `json:"values"`
}

// DirectProvider assembles the dataset from the public sources: the
// central bank's rate history plus the statistics office's price and
// output indices. The three series load concurrently and any failure
// aborts the whole load. Assembled series are cached so restarts
// within the TTL skip the network.
type DirectProvider struct {
	client  *phttp.Client
	cache   cache.Service
	sources Sources
	metrics repository.Metrics
	log     *logger.Logger
}

func NewDirectProvider(client *phttp.Client, cacheSvc cache.Service, sources Sources, metrics repository.Metrics, log *logger.Logger) *DirectProvider {
	return &DirectProvider{
		client:  client,
		cache:   cacheSvc,
		sources: sources,
		metrics: metrics,
		log:     log.With("marketdata"),
	}
}

func (p *DirectProvider) Load(ctx context.Context) (*models.Dataset, models.RuleParameters, error) {
	periods, err := util.PeriodsBetween(p.sources.StartPeriod, p.sources.EndPeriod)
	if err != nil {
		return nil, models.RuleParameters{}, fmt.Errorf("build period index: %w", err)
	}

	var (
		rates     []*float64
		inflation []*float64
		output    []*float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rates, err = p.policyRate(gctx, periods)
		return err
	})
	g.Go(func() error {
		var err error
		inflation, err = p.inflation(gctx, periods)
		return err
	})
	g.Go(func() error {
		var err error
		output, err = p.outputGrowth(gctx, periods)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.RuleParameters{}, err
	}

	ds := &models.Dataset{
		GeneratedAt:     time.Now().UTC(),
		Periods:         periods,
		ActualRate:      rates,
		Inflation:       inflation,
		OutputGrowth:    output,
		InflationTarget: InflationTarget(periods),
	}

	params := rule.Calibrate(ds, p.sources.Defaults)
	p.log.Info("dataset assembled",
		logger.Int("periods", ds.Len()),
		logger.Float64("rho", params.Rho),
		logger.Float64("rstar", params.RStar))
	return ds, params, nil
}

// Status reports per-source cache state: whether an assembled series
// exists and how old it is.
func (p *DirectProvider) Status(ctx context.Context) map[string]interface{} {
	out := make(map[string]interface{}, 3)
	for label, key := range map[string]string{
		"repo_cache": keyPolicyRate,
		"cpi_cache":  keyInflation,
		"gdp_cache":  keyOutput,
	} {
		info, err := p.cache.Info(ctx, key)
		if err != nil {
			out[label] = cache.Info{}
			continue
		}
		out[label] = info
	}
	return out
}

func (p *DirectProvider) policyRate(ctx context.Context, periods []string) ([]*float64, error) {
	if vals, ok := p.fromCache(ctx, keyPolicyRate, periods); ok {
		return vals, nil
	}

	started := time.Now()
	raw, err := p.client.GetBytes(ctx, p.sources.PolicyRateURL)
	if err != nil {
		p.metrics.RecordFetchError(keyPolicyRate)
		return nil, fmt.Errorf("fetch rate history: %w", err)
	}
	changes, err := ParseRateChanges(raw)
	if err != nil {
		p.metrics.RecordFetchError(keyPolicyRate)
		return nil, err
	}
	vals, err := MonthlyRate(changes, periods)
	if err != nil {
		return nil, err
	}

	p.metrics.RecordFetch(keyPolicyRate, time.Since(started).Seconds())
	p.store(ctx, keyPolicyRate, periods, vals)
	return vals, nil
}

func (p *DirectProvider) inflation(ctx context.Context, periods []string) ([]*float64, error) {
	if vals, ok := p.fromCache(ctx, keyInflation, periods); ok {
		return vals, nil
	}

	url := fmt.Sprintf("%s/prc_hicp_midx?geo=%s&unit=I15&coicop=CP00&freq=M",
		p.sources.EurostatBase, p.sources.GeoCode)
	index, err := p.fetchIndex(ctx, keyInflation, url)
	if err != nil {
		return nil, err
	}
	vals, err := MonthlyYoY(index, periods)
	if err != nil {
		return nil, err
	}

	p.store(ctx, keyInflation, periods, vals)
	return vals, nil
}

func (p *DirectProvider) outputGrowth(ctx context.Context, periods []string) ([]*float64, error) {
	if vals, ok := p.fromCache(ctx, keyOutput, periods); ok {
		return vals, nil
	}

	url := fmt.Sprintf("%s/namq_10_gdp?geo=%s&unit=CLV10_MNAC&s_adj=SCA&na_item=B1GQ&freq=Q",
		p.sources.EurostatBase, p.sources.GeoCode)
	index, err := p.fetchIndex(ctx, keyOutput, url)
	if err != nil {
		return nil, err
	}
	vals := QuarterlyYoY(index, periods)

	p.store(ctx, keyOutput, periods, vals)
	return vals, nil
}

func (p *DirectProvider) fetchIndex(ctx context.Context, source, url string) (map[string]float64, error) {
	started := time.Now()

	var raw []byte
	err := p.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method:  phttp.MethodGet,
		URL:     url,
		Headers: map[string]string{"Accept": "application/json"},
	}, &raw)
	if err != nil {
		p.metrics.RecordFetchError(source)
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}

	index, err := parseJSONStat(raw)
	if err != nil {
		p.metrics.RecordFetchError(source)
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	p.metrics.RecordFetch(source, time.Since(started).Seconds())
	return index, nil
}

func (p *DirectProvider) fromCache(ctx context.Context, key string, periods []string) ([]*float64, bool) {
	var doc seriesDocument
	if err := p.cache.Get(ctx, key, &doc); err != nil {
		return nil, false
	}
	if len(doc.Dates) != len(periods) || len(doc.Values) != len(periods) {
		return nil, false
	}
	for i := range periods {
		if doc.Dates[i] != periods[i] {
			return nil, false
		}
	}
	p.log.Info("series loaded from cache", logger.String("source", key))
	return doc.Values, true
}

func (p *DirectProvider) store(ctx context.Context, key string, periods []string, vals []*float64) {
	doc := seriesDocument{Dates: periods, Values: vals}
	if err := p.cache.Set(ctx, key, doc, p.sources.CacheTTL); err != nil {
		p.log.Warn("cache write failed", logger.String("source", key), logger.Error(err))
	}
}

// DocumentsProvider loads the two prebuilt input documents: the
// time-series dataset and the default coefficients. Both load
// concurrently; either failing fails the startup, there is no
// partial-success mode.
type DocumentsProvider struct {
	client    *phttp.Client
	dataURL   string
	paramsURL string
	log       *logger.Logger
}

func NewDocumentsProvider(client *phttp.Client, dataURL, paramsURL string, log *logger.Logger) *DocumentsProvider {
	return &DocumentsProvider{
		client:    client,
		dataURL:   dataURL,
		paramsURL: paramsURL,
		log:       log.With("marketdata"),
	}
}

func (p *DocumentsProvider) Load(ctx context.Context) (*models.Dataset, models.RuleParameters, error) {
	var (
		ds     models.Dataset
		params models.RuleParameters
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.client.GetJSON(gctx, p.dataURL, &ds); err != nil {
			return fmt.Errorf("load dataset document: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := p.client.GetJSON(gctx, p.paramsURL, &params); err != nil {
			return fmt.Errorf("load parameters document: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, models.RuleParameters{}, err
	}

	if !ds.Aligned() {
		return nil, models.RuleParameters{}, fmt.Errorf("dataset document series are misaligned")
	}
	p.log.Info("input documents loaded", logger.Int("periods", ds.Len()))
	return &ds, params, nil
}

// Status for the documents mode only names the configured sources;
// there is no cache to report on.
func (p *DocumentsProvider) Status(_ context.Context) map[string]interface{} {
	return map[string]interface{}{
		"data_url":   p.dataURL,
		"params_url": p.paramsURL,
	}
}
