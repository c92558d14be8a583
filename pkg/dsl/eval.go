// Package dsl 是基于 CEL (Common Expression Language) 的规则解释器。
// 用于把"哪些候选不该出现"这类业务规则写成配置，而不是硬编码。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/reelsense/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Rule 是一条编译好的布尔规则，可对任意 (item, rctx) 重复求值。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "hot" / item.score > 0.7
//   - 元信息："Horror" in item.genres / item.title.contains("(1999)")
//   - 逻辑：label.recall_source.contains("cf") && item.score > 0.8
//   - 存在性：label.recall_source != null
//
// 注意：has(label.key) 可以用 label.key != null 替代。
type Rule struct {
	Expr string
	prg  cel.Program
}

// Compile 编译一条规则。表达式编译一次，之后可并发求值。
// 编译失败应视为配置错误，在启动期暴露。
func Compile(expr string) (*Rule, error) {
	if expr == "" {
		return nil, fmt.Errorf("dsl: empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %v", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %v", expr, err)
	}
	return &Rule{Expr: expr, prg: prg}, nil
}

// Eval 对单个候选求值，返回布尔结果。
// 表达式返回非布尔值或求值出错（例如访问不存在的 key）都报错，
// 由调用方决定是否降级为"不过滤"。
func (r *Rule) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := r.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("dsl: eval %q: %v", r.Expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression %q must return boolean, got %T", r.Expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
// item.Meta 的内容平铺进 item（title/genres 等），方便表达式直接访问。
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	labelAccessor := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = map[string]any{"value": v.Value, "source": v.Source}
		// label.recall_source 直接返回 value，兼容简写
		labelAccessor[k] = v.Value
	}

	itemMap := map[string]any{
		"id":     item.ID,
		"score":  item.Score,
		"labels": labels,
	}
	for k, v := range item.Meta {
		if _, reserved := itemMap[k]; !reserved {
			itemMap[k] = v
		}
	}

	rctxMap := map[string]any{}
	if rctx != nil {
		rctxMap["user_id"] = rctx.UserID
		rctxMap["scene"] = rctx.Scene
		rctxMap["params"] = rctx.Params
	}

	return map[string]any{
		"item":  itemMap,
		"label": labelAccessor,
		"rctx":  rctxMap,
	}
}
