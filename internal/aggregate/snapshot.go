package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"

	"ammGovernance/internal/model"
)

// Snapshots folds events into the latest pool and proposal records.
type Snapshots struct {
	pools         map[string]*model.PoolRecord
	proposals     map[string]*model.ProposalRecord
	dirtyPools    map[string]struct{}
	dirtyProposal map[string]struct{}
}

func NewSnapshots() *Snapshots {
	return &Snapshots{
		pools:         make(map[string]*model.PoolRecord),
		proposals:     make(map[string]*model.ProposalRecord),
		dirtyPools:    make(map[string]struct{}),
		dirtyProposal: make(map[string]struct{}),
	}
}

// Apply updates the snapshot touched by record.
func (s *Snapshots) Apply(record model.TypedEventRecord) error {
	switch record.EventName {
	case model.EventPoolInitialized:
		pool := s.pool(record)
		pool.ReserveA, pool.ReserveB, pool.LPSupply = 0, 0, 0
		return nil
	case model.EventLiquidityAdded:
		var data model.LiquidityAddedData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode liquidity added: %w", err)
		}
		pool := s.pool(record)
		pool.ReserveA, pool.ReserveB, pool.LPSupply = data.ReserveA, data.ReserveB, data.LPSupply
		return nil
	case model.EventLiquidityRemoved:
		var data model.LiquidityRemovedData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode liquidity removed: %w", err)
		}
		pool := s.pool(record)
		pool.ReserveA, pool.ReserveB, pool.LPSupply = data.ReserveA, data.ReserveB, data.LPSupply
		return nil
	case model.EventSwap:
		var data model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		pool := s.pool(record)
		pool.ReserveA, pool.ReserveB = data.ReserveA, data.ReserveB
		return nil
	case model.EventProposalCreated:
		var data model.ProposalCreatedData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode proposal created: %w", err)
		}
		p := s.proposal(record)
		p.ID = data.ID
		p.Creator = data.Creator
		p.Title = data.Title
		p.Status = model.ProposalDraft
		p.VotesNeededToPass = data.VotesNeededToPass
		p.VotingPeriod = data.VotingPeriod
		return nil
	case model.EventVotingStarted:
		var data model.VotingStartedData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode voting started: %w", err)
		}
		p := s.proposal(record)
		p.Status = model.ProposalVoting
		p.VotingStart = data.VotingStart
		return nil
	case model.EventVoteCast:
		var data model.VoteCastData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode vote cast: %w", err)
		}
		s.proposal(record).VotingCount = data.VotingCount
		return nil
	case model.EventVotingFinalized:
		var data model.VotingFinalizedData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode voting finalized: %w", err)
		}
		p := s.proposal(record)
		p.Status = data.Status
		p.VotingCount = data.VotingCount
		return nil
	default:
		return nil
	}
}

func (s *Snapshots) pool(record model.TypedEventRecord) *model.PoolRecord {
	pool := s.pools[record.Address]
	if pool == nil {
		pool = &model.PoolRecord{Address: record.Address}
		s.pools[record.Address] = pool
	}
	if meta := record.PoolMeta; meta != nil {
		pool.TokenAMint = meta.TokenAMint
		pool.TokenBMint = meta.TokenBMint
		pool.LPMint = meta.LPMint
		pool.FeeRate = meta.FeeRate
	}
	pool.LastSequence = record.Sequence
	pool.UpdatedAt = record.Timestamp
	s.dirtyPools[record.Address] = struct{}{}
	return pool
}

func (s *Snapshots) proposal(record model.TypedEventRecord) *model.ProposalRecord {
	p := s.proposals[record.Address]
	if p == nil {
		p = &model.ProposalRecord{Address: record.Address}
		s.proposals[record.Address] = p
	}
	p.LastSequence = record.Sequence
	p.UpdatedAt = record.Timestamp
	s.dirtyProposal[record.Address] = struct{}{}
	return p
}

// Pool returns the current snapshot of a pool.
func (s *Snapshots) Pool(address string) (model.PoolRecord, bool) {
	pool, ok := s.pools[address]
	if !ok {
		return model.PoolRecord{}, false
	}
	return *pool, true
}

// Proposal returns the current snapshot of a proposal.
func (s *Snapshots) Proposal(address string) (model.ProposalRecord, bool) {
	p, ok := s.proposals[address]
	if !ok {
		return model.ProposalRecord{}, false
	}
	return *p, true
}

// Counts reports how many pools and proposals have been seen.
func (s *Snapshots) Counts() (pools, proposals int) {
	return len(s.pools), len(s.proposals)
}

// Drain returns the snapshots changed since the previous call. Pools without
// metadata are held back until an event carries it.
func (s *Snapshots) Drain() ([]model.PoolRecord, []model.ProposalRecord) {
	pools := make([]model.PoolRecord, 0, len(s.dirtyPools))
	for addr := range s.dirtyPools {
		pool := s.pools[addr]
		if pool.TokenAMint == "" {
			continue
		}
		pools = append(pools, *pool)
		delete(s.dirtyPools, addr)
	}
	proposals := make([]model.ProposalRecord, 0, len(s.dirtyProposal))
	for addr := range s.dirtyProposal {
		proposals = append(proposals, *s.proposals[addr])
		delete(s.dirtyProposal, addr)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Address < pools[j].Address })
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].Address < proposals[j].Address })
	return pools, proposals
}
