package ai

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/BaSui01/textcache/types"
)

// Local is a deterministic text processor. It implements the operations a
// real model backend would, with rule-based behavior, so the service runs
// end to end without credentials and cache tests get stable outputs.
type Local struct {
	logger *zap.Logger
}

// NewLocal creates a Local processor.
func NewLocal(logger *zap.Logger) *Local {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{
		logger: logger.With(zap.String("component", "local_processor")),
	}
}

// Process dispatches on the operation. Unknown operations fail with
// ErrOperationUnknown.
func (l *Local) Process(ctx context.Context, req Request) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.ErrTimeout, "processing canceled").WithCause(err)
	}

	switch req.Operation {
	case OpSummarize:
		return l.summarize(req), nil
	case OpSentiment:
		return l.sentiment(req), nil
	case OpKeywords:
		return l.keywords(req), nil
	case OpAnswer:
		return l.answer(req), nil
	case OpEcho:
		return map[string]any{"result": req.Text}, nil
	default:
		return nil, types.NewError(types.ErrOperationUnknown, "unknown operation: "+req.Operation)
	}
}

// summarize returns the first sentences up to a target length. The
// max_length option (characters) defaults to 200.
func (l *Local) summarize(req Request) map[string]any {
	maxLength := optionInt(req.Options, "max_length", 200)

	sentences := splitSentences(req.Text)
	var b strings.Builder
	for _, s := range sentences {
		if b.Len() > 0 && b.Len()+len(s)+1 > maxLength {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	summary := b.String()
	if summary == "" && len(req.Text) > 0 {
		runes := []rune(req.Text)
		if len(runes) > maxLength {
			runes = runes[:maxLength]
		}
		summary = string(runes)
	}

	return map[string]any{
		"result":          summary,
		"sentence_count":  len(sentences),
		"original_length": len([]rune(req.Text)),
	}
}

var (
	positiveWords = map[string]bool{
		"good": true, "great": true, "excellent": true, "love": true,
		"happy": true, "wonderful": true, "best": true, "amazing": true,
	}
	negativeWords = map[string]bool{
		"bad": true, "terrible": true, "awful": true, "hate": true,
		"sad": true, "worst": true, "horrible": true, "poor": true,
	}
)

// sentiment scores by lexicon lookup: (positive - negative) / total words.
func (l *Local) sentiment(req Request) map[string]any {
	words := tokenize(req.Text)

	var pos, neg int
	for _, w := range words {
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
	}

	score := 0.0
	if len(words) > 0 {
		score = float64(pos-neg) / float64(len(words))
	}

	label := "neutral"
	switch {
	case score > 0:
		label = "positive"
	case score < 0:
		label = "negative"
	}

	return map[string]any{
		"result":         label,
		"score":          score,
		"positive_hits":  pos,
		"negative_hits":  neg,
		"words_examined": len(words),
	}
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"of": true, "to": true, "in": true, "on": true, "for": true, "with": true,
	"at": true, "by": true, "it": true, "its": true, "this": true, "that": true,
	"as": true, "from": true, "not": true, "no": true,
}

// keywords returns the most frequent non-stopwords. The max_keywords
// option defaults to 10. Ties break alphabetically so output is stable.
func (l *Local) keywords(req Request) map[string]any {
	maxKeywords := optionInt(req.Options, "max_keywords", 10)

	counts := make(map[string]int)
	for _, w := range tokenize(req.Text) {
		if len(w) < 3 || stopWords[w] {
			continue
		}
		counts[w]++
	}

	type wordCount struct {
		word  string
		count int
	}
	ranked := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, wordCount{w, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})
	if len(ranked) > maxKeywords {
		ranked = ranked[:maxKeywords]
	}

	result := make([]string, len(ranked))
	for i, wc := range ranked {
		result[i] = wc.word
	}

	return map[string]any{
		"result":       result,
		"unique_words": len(counts),
	}
}

// answer finds the sentence sharing the most words with the question.
func (l *Local) answer(req Request) map[string]any {
	questionWords := make(map[string]bool)
	for _, w := range tokenize(req.Question) {
		if !stopWords[w] {
			questionWords[w] = true
		}
	}

	best := ""
	bestScore := 0
	for _, s := range splitSentences(req.Text) {
		score := 0
		for _, w := range tokenize(s) {
			if questionWords[w] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = s, score
		}
	}

	if best == "" {
		return map[string]any{"result": "", "confidence": 0.0}
	}
	confidence := float64(bestScore) / float64(len(questionWords)+1)
	return map[string]any{"result": best, "confidence": confidence}
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func optionInt(options map[string]any, key string, fallback int) int {
	v, ok := options[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		if n > 0 {
			return n
		}
	case float64:
		// JSON numbers decode as float64
		if n > 0 {
			return int(n)
		}
	}
	return fallback
}
