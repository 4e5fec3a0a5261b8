package renderer

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/conway-go/engine/renderer/pipeline"
)

// newCacheOnlyRenderer builds a renderer with no backend for exercising the
// pipeline cache accessors.
func newCacheOnlyRenderer() *renderer {
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
	}
}

// TestPipelinesReturnsCopy verifies callers cannot mutate the pipeline cache
// through the returned map.
func TestPipelinesReturnsCopy(t *testing.T) {
	r := newCacheOnlyRenderer()
	p := pipeline.NewPipeline("life", pipeline.PipelineTypeCompute)
	r.SetPipeline("life", p)

	cache := r.Pipelines()
	delete(cache, "life")
	cache["extra"] = pipeline.NewPipeline("extra", pipeline.PipelineTypeRender)

	if got := r.Pipeline("life"); got != p {
		t.Error("deleting from the returned map removed the cached pipeline")
	}
	if got := r.Pipeline("extra"); got != nil {
		t.Error("inserting into the returned map cached a pipeline")
	}
}

func TestSetPipelinesReplacesCache(t *testing.T) {
	r := newCacheOnlyRenderer()
	r.SetPipeline("old", pipeline.NewPipeline("old", pipeline.PipelineTypeRender))

	p := pipeline.NewPipeline("new", pipeline.PipelineTypeRender)
	r.SetPipelines(map[string]pipeline.Pipeline{"new": p})

	if got := r.Pipeline("old"); got != nil {
		t.Error("SetPipelines kept a pipeline from the previous cache")
	}
	if got := r.Pipeline("new"); got != p {
		t.Errorf("Pipeline(new) = %v, want the replacement pipeline", got)
	}
}
