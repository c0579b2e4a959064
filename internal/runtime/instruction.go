package runtime

import (
	"crypto/sha256"
	"fmt"
	"reflect"

	"github.com/near/borsh-go"

	"ammGovernance/internal/governance"
	"ammGovernance/internal/programerr"
)

// Instruction names.
const (
	InitializePool  = "initialize_pool"
	AddLiquidity    = "add_liquidity"
	RemoveLiquidity = "remove_liquidity"
	Swap            = "swap"
	CreateProposal  = "create_proposal"
	StartVoting     = "start_voting"
	Vote            = "vote"
	FinalizeVoting  = "finalize_voting"
)

// InitializePoolArgs are the arguments of initialize_pool.
type InitializePoolArgs struct {
	FeeRate uint16
}

// AddLiquidityArgs are the arguments of add_liquidity.
type AddLiquidityArgs struct {
	AmountA     uint64
	AmountB     uint64
	MinLPTokens uint64
}

// RemoveLiquidityArgs are the arguments of remove_liquidity.
type RemoveLiquidityArgs struct {
	LPTokens   uint64
	MinAmountA uint64
	MinAmountB uint64
}

// SwapArgs are the arguments of swap.
type SwapArgs struct {
	AmountIn     uint64
	MinAmountOut uint64
	AToB         bool
}

// ProposalIDArgs are the arguments of start_voting, vote and finalize_voting.
type ProposalIDArgs struct {
	ProposalID uint64
}

// InstructionDiscriminator returns the 8-byte selector of an instruction.
func InstructionDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var disc [8]byte
	copy(disc[:], sum[:8])
	return disc
}

// Instruction is a decoded instruction.
type Instruction struct {
	Name string
	Args interface{}
}

// Decoder maps instruction selectors to argument types for one program.
type Decoder struct {
	byDisc map[[8]byte]string
	types  map[string]reflect.Type
}

// NewAMMDecoder decodes pool program instructions.
func NewAMMDecoder() *Decoder {
	return newDecoder(map[string]interface{}{
		InitializePool:  InitializePoolArgs{},
		AddLiquidity:    AddLiquidityArgs{},
		RemoveLiquidity: RemoveLiquidityArgs{},
		Swap:            SwapArgs{},
	})
}

// NewGovernanceDecoder decodes governance program instructions.
func NewGovernanceDecoder() *Decoder {
	return newDecoder(map[string]interface{}{
		CreateProposal: governance.CreateProposalArgs{},
		StartVoting:    ProposalIDArgs{},
		Vote:           ProposalIDArgs{},
		FinalizeVoting: ProposalIDArgs{},
	})
}

func newDecoder(args map[string]interface{}) *Decoder {
	d := &Decoder{
		byDisc: make(map[[8]byte]string, len(args)),
		types:  make(map[string]reflect.Type, len(args)),
	}
	for name, zero := range args {
		d.byDisc[InstructionDiscriminator(name)] = name
		d.types[name] = reflect.TypeOf(zero)
	}
	return d
}

// CanDecode reports whether data starts with a known selector.
func (d *Decoder) CanDecode(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	_, ok := d.byDisc[disc]
	return ok
}

// Decode splits data into the instruction name and its arguments.
func (d *Decoder) Decode(data []byte) (Instruction, error) {
	if len(data) < 8 {
		return Instruction{}, programerr.ErrInstructionFallbackNotFound
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	name, ok := d.byDisc[disc]
	if !ok {
		return Instruction{}, programerr.ErrInstructionFallbackNotFound
	}

	ptr := reflect.New(d.types[name])
	if err := borsh.Deserialize(ptr.Interface(), data[8:]); err != nil {
		return Instruction{}, fmt.Errorf("%s: %w: %v", name, programerr.ErrInstructionDidNotDeserialize, err)
	}
	return Instruction{Name: name, Args: ptr.Elem().Interface()}, nil
}

// Names lists the instructions the decoder knows.
func (d *Decoder) Names() []string {
	names := make([]string, 0, len(d.types))
	for name := range d.types {
		names = append(names, name)
	}
	return names
}

// EncodeInstruction builds instruction data for name with borsh-encoded args.
func EncodeInstruction(name string, args interface{}) ([]byte, error) {
	disc := InstructionDiscriminator(name)
	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	out := make([]byte, 0, len(disc)+len(body))
	out = append(out, disc[:]...)
	return append(out, body...), nil
}
