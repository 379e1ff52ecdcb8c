/*
 * @module service/scheduler/fetchers_test
 * @description 数据源抓取器测试
 * @architecture 单元测试 - 验证抓取器分派与MQTT批次取走
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 构造任务 -> 选择抓取器 -> 验证取数行为
 * @rules MQTT缓冲为空时不产生批次
 * @dependencies testing
 * @refs fetchers.go
 */

package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackhub-service/client/connectors"
	"trackhub-service/service/models"
)

func TestNewFetcherDispatch(t *testing.T) {
	feed := connectors.NewMQTTConnector(&connectors.MQTTConfig{})

	t.Run("csv来源", func(t *testing.T) {
		f, err := NewFetcher(&models.ImportTask{SourceType: "csv"}, feed)
		require.NoError(t, err)
		assert.IsType(t, &CSVFetcher{}, f)
	})

	t.Run("marketplace来源", func(t *testing.T) {
		f, err := NewFetcher(&models.ImportTask{SourceType: "marketplace"}, feed)
		require.NoError(t, err)
		assert.IsType(t, &MarketplaceFetcher{}, f)
	})

	t.Run("mqtt来源", func(t *testing.T) {
		f, err := NewFetcher(&models.ImportTask{SourceType: "mqtt"}, feed)
		require.NoError(t, err)
		assert.IsType(t, &FeedFetcher{}, f)
	})

	t.Run("mqtt未启用", func(t *testing.T) {
		_, err := NewFetcher(&models.ImportTask{SourceType: "mqtt"}, nil)
		assert.Error(t, err)
	})

	t.Run("未知来源", func(t *testing.T) {
		_, err := NewFetcher(&models.ImportTask{SourceType: "ftp"}, feed)
		assert.Error(t, err)
	})
}

func TestFeedFetcherEmptyBuffer(t *testing.T) {
	feed := connectors.NewMQTTConnector(&connectors.MQTTConfig{})
	f := &FeedFetcher{feed: feed}

	records, err := f.Fetch(context.Background(), &models.ImportTask{Name: "realtime"})
	require.NoError(t, err)
	assert.Nil(t, records)
}
