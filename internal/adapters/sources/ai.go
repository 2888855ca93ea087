package sources

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hk_itinerary/internal/adapters/cache"
	"hk_itinerary/internal/domain"
)

// AI asks a language model for venues. Answers are cached per criteria
// fingerprint for the batch TTL.
type AI struct {
	llm     domain.LLMClient
	batches *cache.Batches
	now     func() time.Time
}

func NewAI(llm domain.LLMClient, batches *cache.Batches) *AI {
	return &AI{llm: llm, batches: batches, now: time.Now}
}

func (s *AI) Kind() domain.SourceKind { return domain.SourceAI }

func (s *AI) Fetch(ctx context.Context, c domain.QueryCriteria) ([]domain.VenueRecord, error) {
	load := func(ctx context.Context) ([]domain.VenueRecord, error) {
		out, err := s.llm.Complete(ctx, systemPrompt, generateVenuePrompt(c))
		if err != nil {
			return nil, domain.AsSourceError(domain.SourceAI, err)
		}
		return s.parse(out)
	}
	if s.batches == nil {
		return load(ctx)
	}
	recs, hit, err := s.batches.Get(ctx, domain.SourceAI, c, load)
	if err != nil {
		return nil, domain.AsSourceError(domain.SourceAI, err)
	}
	if hit {
		log.Debug().Int("venues", len(recs)).Msg("ai venues served from cache")
	}
	return recs, nil
}

// parse pulls the first JSON array out of the completion and keeps every
// element that passes the schema and domain validation.
func (s *AI) parse(content string) ([]domain.VenueRecord, error) {
	raw, err := extractArray(content)
	if err != nil {
		return nil, domain.NewSourceError(domain.SourceAI, domain.KindInvalidResponse, err)
	}
	at := s.now()
	out := make([]domain.VenueRecord, 0, len(raw))
	for i, m := range raw {
		if err := validateVenue(m); err != nil {
			log.Debug().Err(err).Int("index", i).Msg("ai venue rejected by schema")
			continue
		}
		v := mapAIVenue(m, at)
		if err := domain.Validate(v); err != nil {
			log.Debug().Err(err).Str("venue", v.Name).Msg("ai venue failed validation")
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, domain.NewSourceError(domain.SourceAI, domain.KindInvalidResponse,
			errors.New("no usable venues in model output"))
	}
	return out, nil
}

var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

func extractArray(content string) ([]map[string]any, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON array in model output")
	}
	body := content[start : end+1]
	// trailing commas are the most common defect in model JSON
	body = trailingComma.ReplaceAllString(body, "$1")

	var raw []map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
