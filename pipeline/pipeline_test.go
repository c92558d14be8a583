package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/reelsense/core"
)

type appendNode struct {
	id  int64
	err error
}

func (n *appendNode) Name() string { return "test.append" }
func (n *appendNode) Kind() Kind   { return KindPostProcess }

func (n *appendNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{&appendNode{id: 1}, &appendNode{id: 2}}}

	out, err := p.Run(context.Background(), &core.RecommendContext{UserID: 1}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Errorf("Run() = %v, want items [1 2]", out)
	}
}

func TestPipeline_Run_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&appendNode{id: 1}, &appendNode{err: boom}, &appendNode{id: 3}}}

	out, err := p.Run(context.Background(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want boom", err)
	}
	if out != nil {
		t.Errorf("Run() = %v, want nil on error", out)
	}
}

func TestPipeline_Run_Empty(t *testing.T) {
	p := &Pipeline{}
	items := []*core.Item{core.NewItem(1)}
	out, err := p.Run(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("Run() = %v, want passthrough", out)
	}
}
