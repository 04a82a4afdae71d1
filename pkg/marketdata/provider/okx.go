package provider

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

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata/writer"
	"go.uber.org/zap"
)

const (
	okxHistoryCandlesPath = "/api/v5/market/history-candles"
	okxInstrumentsPath    = "/api/v5/public/instruments"
	okxTickerPath         = "/api/v5/market/ticker"
	okxBooksPath          = "/api/v5/market/books"
)

// OKXConfig configures the OKX REST client.
type OKXConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
	// Retries is the number of attempts per request.
	Retries int `validate:"gte=1"`
	// Backoff is multiplied by the attempt number before retrying.
	Backoff time.Duration `validate:"gte=0"`
	// RequestInterval is the pause between two pages of a download.
	RequestInterval time.Duration `validate:"gte=0"`
	// PageLimit is the number of candles requested per page, at most 100.
	PageLimit int            `validate:"gte=1,lte=100"`
	Logger    *logger.Logger `validate:"-"`
}

// DefaultOKXConfig returns the public OKX endpoint with 5 attempts per
// request, a 10s timeout and 100 candles per page.
func DefaultOKXConfig() OKXConfig {
	return OKXConfig{
		BaseURL:         "https://www.okx.com",
		Timeout:         10 * time.Second,
		Retries:         5,
		Backoff:         2 * time.Second,
		RequestInterval: 100 * time.Millisecond,
		PageLimit:       100,
	}
}

// Instrument is an entry of the OKX public instruments listing.
type Instrument struct {
	InstID   string `json:"instId"`
	InstType string `json:"instType"`
	BaseCcy  string `json:"baseCcy"`
	QuoteCcy string `json:"quoteCcy"`
	State    string `json:"state"`
	TickSz   string `json:"tickSz"`
	LotSz    string `json:"lotSz"`
	MinSz    string `json:"minSz"`
}

// Ticker is the latest traded price and 24h statistics of an instrument.
type Ticker struct {
	InstID  string `json:"instId"`
	Last    string `json:"last"`
	BidPx   string `json:"bidPx"`
	AskPx   string `json:"askPx"`
	Open24h string `json:"open24h"`
	High24h string `json:"high24h"`
	Low24h  string `json:"low24h"`
	Vol24h  string `json:"vol24h"`
	Ts      string `json:"ts"`
}

// OrderBook levels are [price, size, deprecated, orders] string tuples.
type OrderBook struct {
	Asks [][]string `json:"asks"`
	Bids [][]string `json:"bids"`
	Ts   string     `json:"ts"`
}

type okxResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// OKXClient downloads candles from the OKX v5 REST API.
type OKXClient struct {
	config     OKXConfig
	httpClient *http.Client
	writer     writer.MarketDataWriter
	log        *logger.Logger
}

func NewOKXClient(config OKXConfig) (*OKXClient, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid OKX client configuration", err)
	}

	log := config.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &OKXClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log,
	}, nil
}

func (c *OKXClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// Download pages backward from endDate until a page reaches startDate or
// the exchange has no older candles. A zero endDate starts from now.
func (c *OKXClient) Download(ctx context.Context, instrument string, startDate time.Time, endDate time.Time, timespan Timespan, onProgress OnDownloadProgress) (path string, err error) {
	bar, err := timespan.OKXBar()
	if err != nil {
		return "", err
	}

	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not configured")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	startMillis := startDate.UnixMilli()
	endMillis := time.Now().UnixMilli()
	after := optional.None[int64]()

	if !endDate.IsZero() {
		endMillis = endDate.UnixMilli()
		after = optional.Some(endMillis + 1)
	}

	written := 0

	for {
		if err := ctx.Err(); err != nil {
			return "", finalizeAfter(c.writer, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err))
		}

		page, err := c.FetchCandles(ctx, instrument, bar, after)
		if err != nil {
			return "", finalizeAfter(c.writer, err)
		}

		if len(page) == 0 {
			break
		}

		oldest := page[0].Time.UnixMilli()

		for _, candle := range page {
			ts := candle.Time.UnixMilli()
			oldest = min(oldest, ts)

			if ts < startMillis || ts > endMillis {
				continue
			}

			if err := c.writer.Write(candle); err != nil {
				return "", finalizeAfter(c.writer, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write candle", err))
			}

			written++
		}

		if onProgress != nil {
			onProgress(float64(endMillis-max(oldest, startMillis)), float64(endMillis-startMillis),
				fmt.Sprintf("Downloading %s %s candles from OKX (%d)", instrument, bar, written))
		}

		if oldest <= startMillis || len(page) < c.config.PageLimit {
			break
		}

		after = optional.Some(oldest)

		if err := sleep(ctx, c.config.RequestInterval); err != nil {
			return "", finalizeAfter(c.writer, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err))
		}
	}

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	c.log.Info("Downloaded candles",
		zap.String("instrument", instrument),
		zap.String("bar", bar),
		zap.Int("count", written),
		zap.String("path", outputPath),
	)

	return outputPath, nil
}

// FetchCandles returns one page of candles older than after, newest first.
func (c *OKXClient) FetchCandles(ctx context.Context, instrument string, bar string, after optional.Option[int64]) ([]types.Candle, error) {
	params := url.Values{}
	params.Set("instId", instrument)
	params.Set("bar", bar)
	params.Set("limit", strconv.Itoa(c.config.PageLimit))

	if ts, err := after.Take(); err == nil {
		params.Set("after", strconv.FormatInt(ts, 10))
	}

	var rows [][]string
	if err := c.get(ctx, okxHistoryCandlesPath, params, &rows); err != nil {
		return nil, err
	}

	candles := make([]types.Candle, 0, len(rows))

	for _, row := range rows {
		candle, err := parseOKXCandle(instrument, row)
		if err != nil {
			return nil, err
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

// Instruments lists the instruments of the given type, e.g. SPOT or SWAP.
func (c *OKXClient) Instruments(ctx context.Context, instType string) ([]Instrument, error) {
	params := url.Values{}
	params.Set("instType", instType)

	var instruments []Instrument
	if err := c.get(ctx, okxInstrumentsPath, params, &instruments); err != nil {
		return nil, err
	}

	return instruments, nil
}

func (c *OKXClient) Ticker(ctx context.Context, instrument string) (Ticker, error) {
	params := url.Values{}
	params.Set("instId", instrument)

	var tickers []Ticker
	if err := c.get(ctx, okxTickerPath, params, &tickers); err != nil {
		return Ticker{}, err
	}

	if len(tickers) == 0 {
		return Ticker{}, errors.Newf(errors.ErrCodeNoDataFound, "no ticker for %s", instrument)
	}

	return tickers[0], nil
}

// OrderBook returns the top depth levels of each side.
func (c *OKXClient) OrderBook(ctx context.Context, instrument string, depth int) (OrderBook, error) {
	params := url.Values{}
	params.Set("instId", instrument)

	if depth > 0 {
		params.Set("sz", strconv.Itoa(depth))
	}

	var books []OrderBook
	if err := c.get(ctx, okxBooksPath, params, &books); err != nil {
		return OrderBook{}, err
	}

	if len(books) == 0 {
		return OrderBook{}, errors.Newf(errors.ErrCodeNoDataFound, "no order book for %s", instrument)
	}

	return books[0], nil
}

// get calls path and decodes the data field of the response into out.
// Transport and HTTP status failures are retried; an API error code is not.
func (c *OKXClient) get(ctx context.Context, path string, params url.Values, out any) error {
	var lastErr error

	for attempt := 0; attempt < c.config.Retries; attempt++ {
		body, err := c.do(ctx, path, params)
		if err == nil {
			return decodeOKXResponse(path, body, out)
		}

		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "request cancelled", ctx.Err())
		}

		lastErr = err
		c.log.Warn("OKX request failed",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Int("retries", c.config.Retries),
			zap.Error(err),
		)

		if attempt < c.config.Retries-1 {
			if err := sleep(ctx, c.config.Backoff*time.Duration(attempt+1)); err != nil {
				return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "request cancelled", err)
			}
		}
	}

	return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, lastErr, "max retries (%d) exceeded for %s", c.config.Retries, path)
}

func (c *OKXClient) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func decodeOKXResponse(path string, body []byte, out any) error {
	var response okxResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to decode %s response", path)
	}

	if response.Code != "0" {
		return errors.Newf(errors.ErrCodeMarketDataAPIError, "OKX API error %s: %s", response.Code, response.Msg)
	}

	if err := json.Unmarshal(response.Data, out); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to decode %s data", path)
	}

	return nil
}

// parseOKXCandle parses [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm].
func parseOKXCandle(instrument string, row []string) (types.Candle, error) {
	if len(row) < 6 {
		return types.Candle{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "candle has %d fields, expected at least 6", len(row))
	}

	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.Candle{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid candle timestamp %q", row[0])
	}

	values := make([]float64, 8)

	for i := 1; i < len(row) && i < 8; i++ {
		values[i], err = strconv.ParseFloat(row[i], 64)
		if err != nil {
			return types.Candle{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid candle field %d %q", i, row[i])
		}
	}

	return types.Candle{
		Time:           time.UnixMilli(ts).UTC(),
		Symbol:         instrument,
		Open:           values[1],
		High:           values[2],
		Low:            values[3],
		Close:          values[4],
		Volume:         values[5],
		VolumeCcy:      values[6],
		VolumeCcyQuote: values[7],
		Confirmed:      len(row) < 9 || row[8] == "1",
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
