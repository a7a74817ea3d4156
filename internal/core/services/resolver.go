package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
	"github.com/openhgis/arealink/internal/core/ports/driving"
	"github.com/openhgis/arealink/internal/logger"
	"github.com/openhgis/arealink/internal/names"
)

// Ensure Resolver implements the interface.
var _ driving.CanonicalResolver = (*Resolver)(nil)

// Resolver builds identity chains from the catalogued near-perfect SAME_AS
// links and decides one consensus name per chain. Chains whose names
// diverge beyond the similarity gates keep their originals: a genuine
// historical rename must never be "corrected" into its successor.
type Resolver struct {
	catalog    driven.LinkCatalog
	thresholds domain.Thresholds
}

// NewResolver creates a canonical-name resolver over the given catalog.
func NewResolver(catalog driven.LinkCatalog, th domain.Thresholds) *Resolver {
	return &Resolver{catalog: catalog, thresholds: th}
}

// node identifies one unit instance across the whole series.
type node struct {
	Year int
	ID   string
}

// Resolve loads all identity links, builds chains as connected components
// and emits one decision per chain member, sorted by (Year, UnitID).
func (r *Resolver) Resolve(ctx context.Context) ([]domain.CanonicalNameDecision, error) {
	links, err := r.catalog.IdentityLinks(ctx, r.thresholds.ChainIoU)
	if err != nil {
		return nil, fmt.Errorf("loading identity links: %w", err)
	}
	logger.Info("Loaded %d identity links (iou >= %g)", len(links), r.thresholds.ChainIoU)

	chains := buildChains(links)
	logger.Info("Built %d identity chains", len(chains))

	var decisions []domain.CanonicalNameDecision
	for _, chain := range chains {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decisions = append(decisions, r.decide(chain)...)
	}

	sort.Slice(decisions, func(i, j int) bool {
		if decisions[i].Year != decisions[j].Year {
			return decisions[i].Year < decisions[j].Year
		}
		return decisions[i].UnitID < decisions[j].UnitID
	})
	return decisions, nil
}

// buildChains groups the identity-link endpoints into connected components
// with a union-find over (year, id) nodes. Edges only point forward in
// time, so no cycle handling is needed.
func buildChains(links []domain.RelationshipLink) []domain.IdentityChain {
	parent := make(map[node]node)
	nodeNames := make(map[node]string)

	var find func(n node) node
	find = func(n node) node {
		p, ok := parent[n]
		if !ok {
			parent[n] = n
			return n
		}
		if p == n {
			return n
		}
		root := find(p)
		parent[n] = root
		return root
	}
	union := func(a, b node) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, l := range links {
		from := node{Year: l.YearFrom, ID: l.FromID}
		to := node{Year: l.YearTo, ID: l.ToID}
		union(from, to)
		if l.FromName != "" {
			nodeNames[from] = l.FromName
		}
		if l.ToName != "" {
			nodeNames[to] = l.ToName
		}
	}

	components := make(map[node][]node)
	for n := range parent {
		root := find(n)
		components[root] = append(components[root], n)
	}

	chains := make([]domain.IdentityChain, 0, len(components))
	for _, members := range components {
		sort.Slice(members, func(i, j int) bool {
			if members[i].Year != members[j].Year {
				return members[i].Year < members[j].Year
			}
			return members[i].ID < members[j].ID
		})
		chain := domain.IdentityChain{}
		for _, m := range members {
			chain.Members = append(chain.Members, domain.ChainMember{
				Year:   m.Year,
				UnitID: m.ID,
				Name:   nodeNames[m],
			})
		}
		chains = append(chains, chain)
	}

	// Deterministic chain identifiers, ordered by earliest member.
	sort.Slice(chains, func(i, j int) bool {
		a, b := chains[i].Members[0], chains[j].Members[0]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.UnitID < b.UnitID
	})
	for i := range chains {
		chains[i].ID = fmt.Sprintf("chain_%05d", i)
	}
	return chains
}

// decide computes the consensus outcome for one chain.
func (r *Resolver) decide(chain domain.IdentityChain) []domain.CanonicalNameDecision {
	var named []domain.ChainMember
	for _, m := range chain.Members {
		if m.Name != "" {
			named = append(named, m)
		}
	}

	if len(named) < 2 {
		// Nothing to form a consensus against; trivially no correction.
		return singleInstanceDecisions(chain)
	}

	consensus, consensusCount := consensusName(named)

	avg, minSim := 0.0, 1.0
	for _, m := range named {
		sim := names.Ratio(m.Name, consensus)
		avg += sim
		if sim < minSim {
			minSim = sim
		}
	}
	avg /= float64(len(named))

	apply := avg >= r.thresholds.ChainAvgSimilarity && minSim >= r.thresholds.ChainMinSimilarity
	reason := domain.ReasonOCRError
	if !apply {
		reason = domain.ReasonNameChange
	}

	decisions := make([]domain.CanonicalNameDecision, 0, len(chain.Members))
	for _, m := range chain.Members {
		canonical := m.Name
		if apply {
			canonical = consensus
		}
		decisions = append(decisions, domain.CanonicalNameDecision{
			ChainID:        chain.ID,
			UnitID:         m.UnitID,
			Year:           m.Year,
			OriginalName:   m.Name,
			CanonicalName:  canonical,
			ShouldApply:    apply,
			ConsensusCount: consensusCount,
			AvgSimilarity:  avg,
			MinSimilarity:  minSim,
			Reason:         reason,
		})
	}
	return decisions
}

// consensusName returns the most frequent member name. Ties break toward
// the lexicographically smallest name so the decision is deterministic.
func consensusName(members []domain.ChainMember) (string, int) {
	counts := make(map[string]int)
	for _, m := range members {
		counts[m.Name]++
	}
	best, bestCount := "", 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && name < best) {
			best, bestCount = name, count
		}
	}
	return best, bestCount
}

func singleInstanceDecisions(chain domain.IdentityChain) []domain.CanonicalNameDecision {
	decisions := make([]domain.CanonicalNameDecision, 0, len(chain.Members))
	for _, m := range chain.Members {
		count := 0
		if m.Name != "" {
			count = 1
		}
		decisions = append(decisions, domain.CanonicalNameDecision{
			ChainID:        chain.ID,
			UnitID:         m.UnitID,
			Year:           m.Year,
			OriginalName:   m.Name,
			CanonicalName:  m.Name,
			ShouldApply:    false,
			ConsensusCount: count,
			AvgSimilarity:  1,
			MinSimilarity:  1,
			Reason:         domain.ReasonSingleInstance,
		})
	}
	return decisions
}
