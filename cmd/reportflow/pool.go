package main

import (
	"context"

	reportflow "github.com/alnah/go-reportflow"
)

// ReportRenderer renders one report. Satisfied by *reportflow.Renderer.
type ReportRenderer interface {
	Render(ctx context.Context, input reportflow.Input) (*reportflow.Result, error)
}

// Compile-time interface implementation check.
var _ ReportRenderer = (*reportflow.Renderer)(nil)

// Pool abstracts renderer pool operations for testability.
type Pool interface {
	Acquire() (ReportRenderer, error)
	Release(ReportRenderer)
	Size() int
	Close() error
}

// rendererPool adapts reportflow.RendererPool to Pool.
type rendererPool struct {
	pool *reportflow.RendererPool
}

// newRendererPool creates a pool of n lazily built renderers.
func newRendererPool(n int, opts ...reportflow.Option) Pool {
	return &rendererPool{pool: reportflow.NewRendererPool(n, opts...)}
}

func (p *rendererPool) Acquire() (ReportRenderer, error) {
	r, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *rendererPool) Release(r ReportRenderer) {
	if rr, ok := r.(*reportflow.Renderer); ok {
		p.pool.Release(rr)
	}
}

func (p *rendererPool) Size() int { return p.pool.Size() }

func (p *rendererPool) Close() error { return p.pool.Close() }
