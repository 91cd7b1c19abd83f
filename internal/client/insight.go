package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// Ranges the analysis endpoint accepts.
const (
	minAnalysisDays    = 10
	minAnalysisNews    = 1
	maxAnalysisNews    = 25
	minAnalysisHorizon = 5
	maxAnalysisHorizon = 90
	// MaxSentimentTexts bounds one sentiment request.
	MaxSentimentTexts = 50
)

// GetSignal returns the sentiment-and-trend trading hint for ticker. Responses are cached.
func (c *Client) GetSignal(ctx context.Context, ticker string) (*models.Signal, error) {
	var sig models.Signal
	q := url.Values{"ticker": {ticker}}
	if err := c.Request(ctx, http.MethodGet, "/signal", RequestOptions{Query: q, Cacheable: true}, &sig); err != nil {
		return nil, err
	}
	return &sig, nil
}

// GetAnalysis returns the per-stock analysis for ticker, including the caller's position.
func (c *Client) GetAnalysis(ctx context.Context, ticker string, opts models.AnalysisOptions) (*models.StockAnalysis, error) {
	q := url.Values{}
	if opts.Days != 0 {
		if opts.Days < minAnalysisDays || opts.Days > MaxHistoryDays {
			return nil, fmt.Errorf("days must be between %d and %d", minAnalysisDays, MaxHistoryDays)
		}
		q.Set("days", strconv.Itoa(opts.Days))
	}
	if opts.TopNews != 0 {
		if opts.TopNews < minAnalysisNews || opts.TopNews > maxAnalysisNews {
			return nil, fmt.Errorf("news count must be between %d and %d", minAnalysisNews, maxAnalysisNews)
		}
		q.Set("top_n_news", strconv.Itoa(opts.TopNews))
	}
	if opts.HorizonDays != 0 {
		if opts.HorizonDays < minAnalysisHorizon || opts.HorizonDays > maxAnalysisHorizon {
			return nil, fmt.Errorf("horizon must be between %d and %d days", minAnalysisHorizon, maxAnalysisHorizon)
		}
		q.Set("horizon_days", strconv.Itoa(opts.HorizonDays))
	}

	var analysis models.StockAnalysis
	path := "/stocks/" + url.PathEscape(ticker) + "/analysis"
	if err := c.Request(ctx, http.MethodGet, path, RequestOptions{Query: q}, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// AnalyzeSentiment scores each text. Results come back in input order.
func (c *Client) AnalyzeSentiment(ctx context.Context, texts []string) ([]models.TextSentiment, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("at least one text is required")
	}
	if len(texts) > MaxSentimentTexts {
		return nil, fmt.Errorf("at most %d texts per request", MaxSentimentTexts)
	}

	var results []models.TextSentiment
	body := models.SentimentRequest{Texts: texts, Preprocess: true, UseCache: true}
	if err := c.Request(ctx, http.MethodPost, "/sentiment/analyze", RequestOptions{Body: body}, &results); err != nil {
		return nil, err
	}
	return results, nil
}
