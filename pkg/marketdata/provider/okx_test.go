package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const okxMinute = int64(60_000)

type OKXClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	mu       sync.Mutex
	requests []*http.Request
	handler  http.HandlerFunc
	client   *OKXClient
}

func TestOKXClientSuite(t *testing.T) {
	suite.Run(t, new(OKXClientTestSuite))
}

func (suite *OKXClientTestSuite) SetupTest() {
	suite.requests = nil
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"0","msg":"","data":[]}`)
	}
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.mu.Lock()
		suite.requests = append(suite.requests, r)
		suite.mu.Unlock()
		suite.handler(w, r)
	}))

	client, err := NewOKXClient(OKXConfig{
		BaseURL:   suite.server.URL,
		Timeout:   time.Second,
		Retries:   3,
		PageLimit: 2,
	})
	suite.Require().NoError(err)
	suite.client = client
}

func (suite *OKXClientTestSuite) TearDownTest() {
	suite.server.Close()
}

// candleRow renders an OKX candle row; close is 100 + the minute index.
func candleRow(ts int64) string {
	return fmt.Sprintf(`["%d","100","102","99","%d","5","0.5","50","1"]`, ts, 100+ts/okxMinute)
}

// serveCandles answers history-candles requests from the given timestamps,
// newest first, honouring the after and limit parameters.
func (suite *OKXClientTestSuite) serveCandles(timestamps []int64) {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		after := int64(1 << 62)

		if raw := r.URL.Query().Get("after"); raw != "" {
			after, _ = strconv.ParseInt(raw, 10, 64)
		}

		rows := []string{}

		for i := len(timestamps) - 1; i >= 0 && len(rows) < limit; i-- {
			if timestamps[i] < after {
				rows = append(rows, candleRow(timestamps[i]))
			}
		}

		fmt.Fprintf(w, `{"code":"0","msg":"","data":[%s]}`, strings.Join(rows, ","))
	}
}

func (suite *OKXClientTestSuite) TestNewOKXClientValidatesConfig() {
	_, err := NewOKXClient(OKXConfig{BaseURL: "not a url", Timeout: time.Second, Retries: 1, PageLimit: 100})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewOKXClient(OKXConfig{BaseURL: "https://www.okx.com", Timeout: time.Second, Retries: 1, PageLimit: 300})
	suite.Error(err)

	_, err = NewOKXClient(DefaultOKXConfig())
	suite.NoError(err)
}

func (suite *OKXClientTestSuite) TestFetchCandlesParsesRows() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"0","msg":"","data":[["1718442000000","65000.1","65100","64900.5","65050","12.5","12.5","812500","0"]]}`)
	}

	candles, err := suite.client.FetchCandles(context.Background(), "BTC-USDT", "1H", optional.Some(int64(1718445600000)))
	suite.Require().NoError(err)
	suite.Require().Len(candles, 1)

	candle := candles[0]
	suite.Equal(time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), candle.Time)
	suite.Equal("BTC-USDT", candle.Symbol)
	suite.InDelta(65000.1, candle.Open, 1e-9)
	suite.InDelta(65100.0, candle.High, 1e-9)
	suite.InDelta(64900.5, candle.Low, 1e-9)
	suite.InDelta(65050.0, candle.Close, 1e-9)
	suite.InDelta(812500.0, candle.VolumeCcyQuote, 1e-9)
	suite.False(candle.Confirmed)

	suite.Require().Len(suite.requests, 1)
	query := suite.requests[0].URL.Query()
	suite.Equal(okxHistoryCandlesPath, suite.requests[0].URL.Path)
	suite.Equal("BTC-USDT", query.Get("instId"))
	suite.Equal("1H", query.Get("bar"))
	suite.Equal("2", query.Get("limit"))
	suite.Equal("1718445600000", query.Get("after"))
}

func (suite *OKXClientTestSuite) TestFetchCandlesWithoutAfter() {
	_, err := suite.client.FetchCandles(context.Background(), "BTC-USDT", "1m", optional.None[int64]())
	suite.Require().NoError(err)
	suite.Require().Len(suite.requests, 1)
	suite.False(suite.requests[0].URL.Query().Has("after"))
}

func (suite *OKXClientTestSuite) TestFetchCandlesInvalidRow() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"0","msg":"","data":[["1718442000000","1","2"]]}`)
	}

	_, err := suite.client.FetchCandles(context.Background(), "BTC-USDT", "1m", optional.None[int64]())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (suite *OKXClientTestSuite) TestAPIErrorIsNotRetried() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`)
	}

	_, err := suite.client.FetchCandles(context.Background(), "NOPE-USDT", "1m", optional.None[int64]())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataAPIError))
	suite.Contains(err.Error(), "Instrument ID does not exist")
	suite.Len(suite.requests, 1)
}

func (suite *OKXClientTestSuite) TestServerErrorIsRetried() {
	calls := 0
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "busy", http.StatusInternalServerError)

			return
		}

		fmt.Fprintf(w, `{"code":"0","msg":"","data":[%s]}`, candleRow(okxMinute))
	}

	candles, err := suite.client.FetchCandles(context.Background(), "BTC-USDT", "1m", optional.None[int64]())
	suite.Require().NoError(err)
	suite.Len(candles, 1)
	suite.Equal(3, calls)
}

func (suite *OKXClientTestSuite) TestRetriesExhausted() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}

	_, err := suite.client.FetchCandles(context.Background(), "BTC-USDT", "1m", optional.None[int64]())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "max retries (3) exceeded")
	suite.Len(suite.requests, 3)
}

func (suite *OKXClientTestSuite) TestDownloadPagesBackwardAndFilters() {
	timestamps := make([]int64, 0, 10)
	for i := int64(0); i < 10; i++ {
		timestamps = append(timestamps, i*okxMinute)
	}

	suite.serveCandles(timestamps)

	mockW := &mockWriter{outputPath: "/tmp/okx.parquet"}
	suite.client.ConfigWriter(mockW)

	var progressCalls int

	start := time.UnixMilli(3 * okxMinute)
	end := time.UnixMilli(7 * okxMinute)

	path, err := suite.client.Download(context.Background(), "BTC-USDT", start, end, TimespanOneMinute,
		func(current float64, total float64, message string) {
			progressCalls++
			suite.LessOrEqual(current, total)
		})
	suite.Require().NoError(err)
	suite.Equal("/tmp/okx.parquet", path)
	suite.Equal(1, mockW.finalizeCallCount)

	var written []int64
	for _, candle := range mockW.writtenData {
		written = append(written, candle.Time.UnixMilli()/okxMinute)
	}

	suite.ElementsMatch([]int64{3, 4, 5, 6, 7}, written)
	suite.Positive(progressCalls)

	suite.Require().NotEmpty(suite.requests)
	suite.Equal(strconv.FormatInt(7*okxMinute+1, 10), suite.requests[0].URL.Query().Get("after"))

	for i := 1; i < len(suite.requests); i++ {
		prev, _ := strconv.ParseInt(suite.requests[i-1].URL.Query().Get("after"), 10, 64)
		next, _ := strconv.ParseInt(suite.requests[i].URL.Query().Get("after"), 10, 64)
		suite.Less(next, prev)
	}
}

func (suite *OKXClientTestSuite) TestDownloadStopsOnShortPage() {
	suite.serveCandles([]int64{5 * okxMinute})

	mockW := &mockWriter{}
	suite.client.ConfigWriter(mockW)

	_, err := suite.client.Download(context.Background(), "BTC-USDT", time.UnixMilli(0), time.UnixMilli(10*okxMinute), TimespanOneMinute, nil)
	suite.Require().NoError(err)
	suite.Len(mockW.writtenData, 1)
	suite.Len(suite.requests, 1)
}

func (suite *OKXClientTestSuite) TestDownloadRejectsUnsupportedTimespan() {
	suite.client.ConfigWriter(&mockWriter{})

	_, err := suite.client.Download(context.Background(), "BTC-USDT", time.UnixMilli(0), time.UnixMilli(okxMinute), TimespanEightHours, nil)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidInterval))
	suite.Empty(suite.requests)
}

func (suite *OKXClientTestSuite) TestDownloadWithoutWriter() {
	_, err := suite.client.Download(context.Background(), "BTC-USDT", time.UnixMilli(0), time.UnixMilli(okxMinute), TimespanOneMinute, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "writer is not configured")
}

func (suite *OKXClientTestSuite) TestDownloadAPIErrorFinalizesWriter() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"50011","msg":"Too Many Requests","data":[]}`)
	}

	mockW := &mockWriter{}
	suite.client.ConfigWriter(mockW)

	_, err := suite.client.Download(context.Background(), "BTC-USDT", time.UnixMilli(0), time.UnixMilli(okxMinute), TimespanOneMinute, nil)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataAPIError))
	suite.Equal(1, mockW.finalizeCallCount)
}

func (suite *OKXClientTestSuite) TestDownloadCancelled() {
	suite.serveCandles([]int64{0, okxMinute, 2 * okxMinute})
	suite.client.ConfigWriter(&mockWriter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.client.Download(ctx, "BTC-USDT", time.UnixMilli(0), time.UnixMilli(2*okxMinute), TimespanOneMinute, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "download cancelled")
}

func (suite *OKXClientTestSuite) TestInstruments() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"0","msg":"","data":[{"instId":"BTC-USDT","instType":"SPOT","baseCcy":"BTC","quoteCcy":"USDT","state":"live","tickSz":"0.1","lotSz":"0.00000001","minSz":"0.00001"}]}`)
	}

	instruments, err := suite.client.Instruments(context.Background(), "SPOT")
	suite.Require().NoError(err)
	suite.Require().Len(instruments, 1)
	suite.Equal("BTC-USDT", instruments[0].InstID)
	suite.Equal("BTC", instruments[0].BaseCcy)
	suite.Equal("live", instruments[0].State)
	suite.Equal(okxInstrumentsPath, suite.requests[0].URL.Path)
	suite.Equal("SPOT", suite.requests[0].URL.Query().Get("instType"))
}

func (suite *OKXClientTestSuite) TestTicker() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"0","msg":"","data":[{"instId":"ETH-USDT","last":"3500.5","bidPx":"3500.4","askPx":"3500.6","ts":"1718442000000"}]}`)
	}

	ticker, err := suite.client.Ticker(context.Background(), "ETH-USDT")
	suite.Require().NoError(err)
	suite.Equal("3500.5", ticker.Last)
	suite.Equal("3500.4", ticker.BidPx)
}

func (suite *OKXClientTestSuite) TestTickerEmpty() {
	_, err := suite.client.Ticker(context.Background(), "ETH-USDT")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoDataFound))
}

func (suite *OKXClientTestSuite) TestOrderBook() {
	suite.handler = func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"0","msg":"","data":[{"asks":[["101","2","0","1"]],"bids":[["99","3","0","2"]],"ts":"1718442000000"}]}`)
	}

	book, err := suite.client.OrderBook(context.Background(), "BTC-USDT", 5)
	suite.Require().NoError(err)
	suite.Equal([][]string{{"101", "2", "0", "1"}}, book.Asks)
	suite.Equal([][]string{{"99", "3", "0", "2"}}, book.Bids)
	suite.Equal("5", suite.requests[0].URL.Query().Get("sz"))
}
