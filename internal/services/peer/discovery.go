package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/bobmcallan/peerscope/internal/models"
	"github.com/bobmcallan/peerscope/internal/prompts"
)

// DiscoverPeers asks the LLM for candidate peers of the profiled company and
// returns the candidates that survive FilterPeers.
func (s *Service) DiscoverPeers(ctx context.Context, profile models.CompanyProfile) ([]models.PeerCandidate, error) {
	if s.llm == nil {
		return nil, models.ErrNoLLM
	}
	symbol := models.NormalizeSymbol(profile.Symbol)
	if symbol == "" {
		return nil, models.ErrNoSymbols
	}

	industry := profile.Industry
	if industry == "" {
		industry = profile.Sector
	}
	prompt, err := s.prompts.PeerDiscoveryPrompt(prompts.PeerDiscoveryData{
		Symbol:   symbol,
		Industry: industry,
		Exchange: profile.Exchange,
		Count:    s.candidates,
	})
	if err != nil {
		return nil, err
	}

	text, err := s.llm.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("peer discovery for %s: %w", symbol, err)
	}

	candidates, err := ParseCandidates(text)
	if err != nil {
		s.logger.Warn().Str("symbol", symbol).Str("provider", s.llm.Provider()).Err(err).Msg("Unparseable peer list from model")
		return nil, fmt.Errorf("peer discovery for %s: %w", symbol, err)
	}

	peers := s.FilterPeers(ctx, symbol, candidates)
	s.logger.Info().
		Str("symbol", symbol).
		Int("candidates", len(candidates)).
		Int("kept", len(peers)).
		Msg("Peers discovered")
	return peers, nil
}

// ParseCandidates reads a model response holding a symbol → name object.
// Strict JSON is tried first so key order is kept; otherwise the text is
// repaired (markdown fences, single quotes, trailing commas). A JSON array of
// symbols or of {symbol, name} objects is also accepted.
func ParseCandidates(text string) ([]models.PeerCandidate, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	if out, err := parseCandidates(body); err == nil {
		return out, nil
	}

	repaired, err := jsonrepair.RepairJSON(body)
	if err != nil {
		return nil, fmt.Errorf("repair peer JSON: %w", err)
	}
	return parseCandidates(repaired)
}

func parseCandidates(body string) ([]models.PeerCandidate, error) {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "[") {
		return parseArray([]byte(trimmed))
	}
	return parseObject([]byte(trimmed))
}

// extractJSON returns the outermost {...} or [...] span of text
func extractJSON(text string) string {
	open := strings.IndexAny(text, "{[")
	if open < 0 {
		return ""
	}
	closer := "}"
	if text[open] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end <= open {
		// unterminated; let the repair pass close it
		return text[open:]
	}
	return text[open : end+1]
}

func parseObject(data []byte) ([]models.PeerCandidate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode peer JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("peer JSON is not an object")
	}

	var out []models.PeerCandidate
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode peer JSON: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode peer JSON: %w", err)
		}
		out = append(out, models.PeerCandidate{Symbol: strings.TrimSpace(key), Name: nameOf(raw)})
	}
	return out, nil
}

func parseArray(data []byte) ([]models.PeerCandidate, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode peer JSON: %w", err)
	}

	out := make([]models.PeerCandidate, 0, len(items))
	for _, item := range items {
		var sym string
		if err := json.Unmarshal(item, &sym); err == nil {
			out = append(out, models.PeerCandidate{Symbol: strings.TrimSpace(sym)})
			continue
		}
		var obj struct {
			Symbol string `json:"symbol"`
			Ticker string `json:"ticker"`
			Name   string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if obj.Symbol == "" {
			obj.Symbol = obj.Ticker
		}
		out = append(out, models.PeerCandidate{Symbol: strings.TrimSpace(obj.Symbol), Name: strings.TrimSpace(obj.Name)})
	}
	return out, nil
}

func nameOf(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return strings.TrimSpace(name)
	}
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}
