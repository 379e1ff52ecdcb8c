/*
 * @module service/scheduler/fetchers
 * @description 导入数据源抓取器：CSV目录、市场平台API与MQTT实时流三种来源
 * @architecture 策略模式 - 按任务的 source_type 分派抓取器
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 任务触发 -> 按来源抓取 -> 规范化为键值批次
 * @rules 抓取器只负责取数与规范化，清洗和对账交给管道
 * @dependencies encoding/csv, net/http, trackhub-service/service/utils
 * @refs task_executor.go, client/connectors/mqtt_connector.go
 */

package scheduler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trackhub-service/client/connectors"
	"trackhub-service/service/models"
	"trackhub-service/service/utils"
)

// Fetcher 数据源抓取器
type Fetcher interface {
	Fetch(ctx context.Context, task *models.ImportTask) ([]map[string]interface{}, error)
}

// NewFetcher 按任务来源类型选择抓取器
func NewFetcher(task *models.ImportTask, feed *connectors.MQTTConnector) (Fetcher, error) {
	switch task.SourceType {
	case "csv":
		return &CSVFetcher{converter: utils.NewDataConverter()}, nil
	case "marketplace":
		return &MarketplaceFetcher{
			crypto:    utils.NewCryptoUtils(),
			converter: utils.NewDataConverter(),
			client:    &http.Client{Timeout: 30 * time.Second},
		}, nil
	case "mqtt":
		if feed == nil {
			return nil, fmt.Errorf("MQTT实时流未启用")
		}
		return &FeedFetcher{feed: feed}, nil
	default:
		return nil, fmt.Errorf("未知的数据来源类型: %s", task.SourceType)
	}
}

// CSVFetcher 从投递目录读取以任务命名的CSV文件
type CSVFetcher struct {
	converter *utils.DataConverter
}

// Fetch 读取 IMPORT_CSV_DIR/<任务名>.csv，首行为表头
func (f *CSVFetcher) Fetch(ctx context.Context, task *models.ImportTask) ([]map[string]interface{}, error) {
	dir := os.Getenv("IMPORT_CSV_DIR")
	if dir == "" {
		dir = "/data/imports"
	}
	path := filepath.Join(dir, task.Name+".csv")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取CSV文件失败: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(f.converter.EnsureUTF8(raw)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取CSV表头失败: %w", err)
	}

	var records []map[string]interface{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("CSV读取被取消: %w", err)
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取CSV行失败: %w", err)
		}
		records = append(records, f.converter.NormalizeRecord(header, row))
	}
	return records, nil
}

// MarketplaceFetcher 调用市场平台订单API取数
type MarketplaceFetcher struct {
	crypto    *utils.CryptoUtils
	converter *utils.DataConverter
	client    *http.Client
}

// Fetch 解密凭证后拉取订单列表，期望响应为JSON数组
func (f *MarketplaceFetcher) Fetch(ctx context.Context, task *models.ImportTask) ([]map[string]interface{}, error) {
	baseURL := os.Getenv("MARKETPLACE_API_BASE")
	if baseURL == "" {
		return nil, fmt.Errorf("未配置MARKETPLACE_API_BASE")
	}

	token := ""
	if task.CredentialsEnc != "" {
		decrypted, err := f.crypto.Decrypt(task.CredentialsEnc)
		if err != nil {
			return nil, fmt.Errorf("解密任务凭证失败: %w", err)
		}
		token = decrypted
	}

	url := fmt.Sprintf("%s/%s/orders", baseURL, task.Marketplace)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求市场平台API失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("市场平台API返回状态 %d", resp.StatusCode)
	}

	var payload []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析市场平台响应失败: %w", err)
	}
	return f.converter.NormalizeBatch(payload)
}

// FeedFetcher 从MQTT实时流缓冲取走累积的运单更新
type FeedFetcher struct {
	feed *connectors.MQTTConnector
}

// Fetch 取走当前缓冲的全部消息，缓冲为空时返回空批次
func (f *FeedFetcher) Fetch(ctx context.Context, task *models.ImportTask) ([]map[string]interface{}, error) {
	buffered := f.feed.Buffered()
	if buffered == 0 {
		return nil, nil
	}
	slog.Debug("取走MQTT缓冲批次", "task", task.Name, "buffered", buffered)
	return f.feed.Drain(), nil
}
