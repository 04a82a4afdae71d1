package engine

import (
	"errors"
	"testing"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})

	for i := 1; i <= 5; i++ {
		err := callback(i, 5)
		suite.NoError(err)
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestOnRunEndCallbackCanAbort() {
	callback := OnRunEndCallback(func(result types.BacktestResult, resultFolderPath string) error {
		if result.Report.TotalTrades == 0 {
			return errors.New("no trades in " + resultFolderPath)
		}

		return nil
	})

	suite.Error(callback(types.BacktestResult{}, "results/rsi/BTC"))
	suite.NoError(callback(types.BacktestResult{Report: types.Report{TotalTrades: 1}}, "results/rsi/BTC"))
}

func (suite *EngineTestSuite) TestLifecycleCallbacksDefaultToNil() {
	var callbacks LifecycleCallbacks

	suite.Nil(callbacks.OnBacktestStart)
	suite.Nil(callbacks.OnRunEnd)
	suite.Nil(callbacks.OnProcessData)
}
