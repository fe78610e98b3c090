package dispatcher

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/storacha/go-authority/authority"
)

// BuildIssue builds the token program's native MintTo instruction, naming the
// authority as the signing mint authority with no cosigners. It is pure:
// identical inputs give identical instructions.
func BuildIssue(program solana.PublicKey, auth authority.Authority, mint, destination solana.PublicKey, amount uint64) (solana.Instruction, error) {
	ix, err := token.NewMintToInstruction(
		amount,
		mint,
		destination,
		auth.Address(),
		[]solana.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("building mint-to instruction: %w", err)
	}
	return rebind(program, ix)
}

// BuildTransfer builds the token program's native Transfer instruction,
// naming the authority as the signing owner of source with no cosigners.
func BuildTransfer(program solana.PublicKey, auth authority.Authority, source, destination solana.PublicKey, amount uint64) (solana.Instruction, error) {
	ix, err := token.NewTransferInstruction(
		amount,
		source,
		destination,
		auth.Address(),
		[]solana.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("building transfer instruction: %w", err)
	}
	return rebind(program, ix)
}

// rebind addresses an instruction to program, which may be a token program
// deployed under a different ID than the SPL default.
func rebind(program solana.PublicKey, ix solana.Instruction) (solana.Instruction, error) {
	if program.Equals(ix.ProgramID()) {
		return ix, nil
	}
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("encoding instruction data: %w", err)
	}
	return solana.NewInstruction(program, ix.Accounts(), data), nil
}
