package peer

import (
	"context"
	"sort"

	"github.com/bobmcallan/peerscope/internal/models"
)

// ResolvePeers filters explicit peers against the profiled company, or asks
// the LLM for candidates when none are given.
func (s *Service) ResolvePeers(ctx context.Context, profile models.CompanyProfile, explicit []string) ([]models.PeerCandidate, error) {
	if len(explicit) == 0 {
		return s.DiscoverPeers(ctx, profile)
	}
	candidates := make([]models.PeerCandidate, len(explicit))
	for i, p := range explicit {
		candidates[i] = models.PeerCandidate{Symbol: p}
	}
	return s.FilterPeers(ctx, profile.Symbol, candidates), nil
}

// FilterPeers keeps the first maxPeers candidates, in candidate order, that
// the market data source can verify. The primary symbol, blanks and repeats
// are dropped. The result is sorted by symbol.
func (s *Service) FilterPeers(ctx context.Context, primary string, candidates []models.PeerCandidate) []models.PeerCandidate {
	seen := map[string]bool{models.NormalizeSymbol(primary): true}
	kept := make([]models.PeerCandidate, 0, s.maxPeers)

	for _, c := range candidates {
		if len(kept) >= s.maxPeers || ctx.Err() != nil {
			break
		}
		sym := models.NormalizeSymbol(c.Symbol)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true

		ok, err := s.source.ValidateSymbol(ctx, sym)
		if err != nil {
			s.logger.Debug().Str("symbol", sym).Err(err).Msg("Peer validation failed, dropping candidate")
			continue
		}
		if !ok {
			s.logger.Debug().Str("symbol", sym).Msg("Invalid peer symbol dropped")
			continue
		}
		kept = append(kept, models.PeerCandidate{Symbol: sym, Name: c.Name})
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Symbol < kept[j].Symbol
	})
	return kept
}
