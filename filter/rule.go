package filter

import (
	"context"

	"github.com/rushteam/reelsense/core"
	"github.com/rushteam/reelsense/pkg/dsl"
)

// RuleFilter 是基于 CEL 表达式的规则过滤器：任意一条规则命中即过滤。
// 规则在构造期编译，非法表达式在启动时暴露为配置错误。
//
// 示例规则：
//   - `"horror" in item.genres`            屏蔽某类型
//   - `item.score < 0.05`                  去掉弱信号长尾
//   - `label.recall_source == "hot" && rctx.scene == "vip"`
type RuleFilter struct {
	rules []*dsl.Rule
}

// NewRuleFilter 编译全部规则；任何一条编译失败都返回错误。
func NewRuleFilter(exprs []string) (*RuleFilter, error) {
	rules := make([]*dsl.Rule, 0, len(exprs))
	for _, expr := range exprs {
		rule, err := dsl.Compile(expr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return &RuleFilter{rules: rules}, nil
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	for _, rule := range f.rules {
		hit, err := rule.Eval(item, rctx)
		if err != nil {
			// 求值错误（例如访问缺失字段）按未命中处理，规则问题不放大为请求失败
			continue
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
