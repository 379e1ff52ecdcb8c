/*
 * @module service/correction/script_executor
 * @description 脚本转换执行器，基于 yaegi 解释执行规则携带的 Go 脚本转换函数
 * @architecture 解释器封装 - 按脚本源码缓存编译结果
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 脚本求值 -> Transform 符号提取 -> 类型断言 -> 缓存复用
 * @rules 脚本必须定义 func Transform(value string) string，编译失败等同规则编译错误，跳过不中断
 * @dependencies github.com/traefik/yaegi
 * @refs rule_engine.go
 */

package correction

import (
	"fmt"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ScriptExecutor 脚本转换执行器
type ScriptExecutor struct {
	mu    sync.Mutex
	cache map[string]TransformFunc
}

// NewScriptExecutor 创建脚本执行器
func NewScriptExecutor() *ScriptExecutor {
	return &ScriptExecutor{
		cache: make(map[string]TransformFunc),
	}
}

// Compile 编译脚本为转换函数，同一脚本源码复用缓存结果
func (se *ScriptExecutor) Compile(src string) (TransformFunc, error) {
	se.mu.Lock()
	defer se.mu.Unlock()

	if fn, ok := se.cache[src]; ok {
		return fn, nil
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("加载脚本标准库失败: %w", err)
	}

	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("脚本求值失败: %w", err)
	}

	v, err := i.Eval("Transform")
	if err != nil {
		return nil, fmt.Errorf("脚本缺少 Transform 函数: %w", err)
	}

	fn, ok := v.Interface().(func(string) string)
	if !ok {
		return nil, fmt.Errorf("Transform 签名必须为 func(string) string")
	}

	se.cache[src] = fn
	return fn, nil
}
