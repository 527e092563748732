package store

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantlab-io/quantsandbox/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBStoreTestSuite struct {
	suite.Suite
	store *DuckDBStore
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (suite *DuckDBStoreTestSuite) SetupTest() {
	store, err := NewDuckDBStore("")
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *DuckDBStoreTestSuite) TearDownTest() {
	suite.NoError(suite.store.Close())
}

func (suite *DuckDBStoreTestSuite) sampleBars(symbol string, n int) []types.PriceBar {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, n)

	for i := range bars {
		price := 100 + float64(i)
		bars[i] = types.PriceBar{
			Time:   start.AddDate(0, 0, i),
			Symbol: symbol,
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		}
	}

	return bars
}

func (suite *DuckDBStoreTestSuite) TestSaveAndLoadRoundTrip() {
	bars := suite.sampleBars("AAPL", 5)
	suite.Require().NoError(suite.store.SaveBars("AAPL", bars))

	loaded, err := suite.store.LoadBars("AAPL", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Len(loaded, 5)
	suite.Equal(100.0, loaded[0].Close)
	suite.Equal(104.0, loaded[4].Close)
	suite.NoError(types.ValidateSeries(loaded))
}

func (suite *DuckDBStoreTestSuite) TestSaveReplacesPriorBars() {
	suite.Require().NoError(suite.store.SaveBars("AAPL", suite.sampleBars("AAPL", 5)))
	suite.Require().NoError(suite.store.SaveBars("AAPL", suite.sampleBars("AAPL", 3)))

	count, err := suite.store.Count("AAPL")
	suite.Require().NoError(err)
	suite.Equal(3, count)
}

func (suite *DuckDBStoreTestSuite) TestSaveRejectsInvalidSeries() {
	suite.ErrorIs(suite.store.SaveBars("AAPL", nil), types.ErrEmptySeries)

	bars := suite.sampleBars("AAPL", 2)
	bars[1].Time = bars[0].Time
	suite.ErrorIs(suite.store.SaveBars("AAPL", bars), types.ErrUnorderedSeries)
}

func (suite *DuckDBStoreTestSuite) TestLoadUnknownSymbol() {
	_, err := suite.store.LoadBars("NOPE", optional.None[time.Time](), optional.None[time.Time]())
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *DuckDBStoreTestSuite) TestLoadWithDateBounds() {
	bars := suite.sampleBars("AAPL", 10)
	suite.Require().NoError(suite.store.SaveBars("AAPL", bars))

	start := bars[2].Time
	end := bars[6].Time

	loaded, err := suite.store.LoadBars("AAPL", optional.Some(start), optional.Some(end))
	suite.Require().NoError(err)
	suite.Len(loaded, 5)
	suite.Equal(bars[2].Close, loaded[0].Close)
	suite.Equal(bars[6].Close, loaded[4].Close)
}

func (suite *DuckDBStoreTestSuite) TestSymbolsAreIsolated() {
	suite.Require().NoError(suite.store.SaveBars("AAPL", suite.sampleBars("AAPL", 4)))
	suite.Require().NoError(suite.store.SaveBars("TSLA", suite.sampleBars("TSLA", 7)))

	count, err := suite.store.Count("AAPL")
	suite.Require().NoError(err)
	suite.Equal(4, count)

	count, err = suite.store.Count("TSLA")
	suite.Require().NoError(err)
	suite.Equal(7, count)
}
