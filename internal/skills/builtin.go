package skills

import (
	"context"
	"fmt"
	"time"

	duckduckgo "github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
)

// RegisterBuiltins adds the in-process skills that ship with Scribe. These
// follow the same Handler contract as WASM skill packages but are compiled
// into the binary.
func RegisterBuiltins(ctx context.Context, r *Registry) error {
	if err := registerWebSearch(ctx, r); err != nil {
		return err
	}
	return nil
}

func registerWebSearch(ctx context.Context, r *Registry) error {
	search, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web using DuckDuckGo. Returns titles, URLs, and summaries.",
		MaxResults: 10,
		Timeout:    15 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("init web_search: %w", err)
	}

	desc := &Descriptor{
		Name:        "web_search",
		Description: "Search the web using DuckDuckGo. Returns titles, URLs, and summaries.",
		Parameters: map[string]ParamSpec{
			"query": {
				Type:        "string",
				Description: "The search query.",
				Required:    true,
			},
		},
	}

	handler := HandlerFunc(func(ctx context.Context, argumentsJSON string) (string, error) {
		return search.InvokableRun(ctx, argumentsJSON)
	})

	return r.Register(desc, handler)
}
