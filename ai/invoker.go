package ai

import (
	"context"

	"github.com/BaSui01/textcache/types"
)

// Operations supported by the local processor. An Invoker backed by a real
// model may accept more.
const (
	OpSummarize = "summarize"
	OpSentiment = "sentiment"
	OpKeywords  = "keywords"
	OpAnswer    = "answer"
	OpEcho      = "echo"
)

// Request is one text-processing invocation.
type Request struct {
	Text      string         `json:"text"`
	Operation string         `json:"operation"`
	Question  string         `json:"question,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// Invoker processes text. Implementations must be safe for concurrent use;
// results must be JSON-serializable maps.
type Invoker interface {
	Process(ctx context.Context, req Request) (map[string]any, error)
}

// Validate reports request contract violations.
func (r *Request) Validate(maxTextLength int) error {
	if r.Operation == "" {
		return types.NewError(types.ErrInvalidRequest, "operation is required")
	}
	if maxTextLength > 0 && len([]rune(r.Text)) > maxTextLength {
		return types.NewError(types.ErrTextTooLarge, "text exceeds the configured maximum length")
	}
	return nil
}
