/*
 * @module service/reconcile/config
 * @description 增量导入配置的纯校验器
 * @architecture 工具函数 - 无状态
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 配置输入 -> 枚举与必填检查 -> 校验结果
 * @rules 校验器只收集错误不抛出，非法配置必须在对账开始前被拒绝
 * @dependencies trackhub-service/service/models
 * @refs reconciler.go
 */

package reconcile

import (
	"fmt"
	"strings"

	"trackhub-service/service/models"
)

// ValidateConfig 校验增量导入配置，返回全部错误而非首个错误
func ValidateConfig(config models.IncrementalImportConfig) models.ConfigValidation {
	var errs []string

	if len(config.KeyFields) == 0 {
		errs = append(errs, "至少需要一个键字段")
	}
	for i, field := range config.KeyFields {
		if strings.TrimSpace(field) == "" {
			errs = append(errs, fmt.Sprintf("第 %d 个键字段为空", i+1))
		}
	}

	switch config.Strategy {
	case models.StrategyMerge, models.StrategyReplace, models.StrategyAppend:
	default:
		errs = append(errs, fmt.Sprintf("未知的导入策略: %s", config.Strategy))
	}

	switch config.ConflictResolution {
	case models.ResolutionNewerWins, models.ResolutionSourceWins, models.ResolutionTargetWins, models.ResolutionManual:
	default:
		errs = append(errs, fmt.Sprintf("未知的冲突解决策略: %s", config.ConflictResolution))
	}

	switch config.SyncDirection {
	case models.DirectionUnidirectional, models.DirectionBidirectional:
	default:
		errs = append(errs, fmt.Sprintf("未知的同步方向: %s", config.SyncDirection))
	}

	return models.ConfigValidation{IsValid: len(errs) == 0, Errors: errs}
}
