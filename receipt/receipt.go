package receipt

import (
	// for go:embed
	_ "embed"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/schema"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	"github.com/storacha/go-authority/authority"
)

//go:embed receipt.ipldsch
var receiptSchema []byte

var typ schema.Type

func init() {
	ts, err := ipld.LoadSchemaBytes(receiptSchema)
	if err != nil {
		panic(fmt.Errorf("loading receipt schema: %w", err))
	}
	typ = ts.TypeByName("Receipt")
}

// Operation is the kind of delegated operation a receipt confirms.
type Operation string

const (
	Issue    Operation = "issue"
	Transfer Operation = "transfer"
)

// ReceiptModel is the IPLD data model of a receipt.
type ReceiptModel struct {
	Operation string
	Amount    uint64
	Signer    string
	Authority string
	Bump      uint8
	Accounts  []string
	Commit    uint64
}

// Receipt is the confirmation record of a committed delegated invocation. It
// is content addressed, so receipts of two identical operations differ by
// their commit.
type Receipt interface {
	Operation() Operation
	Amount() uint64
	Signer() solana.PublicKey
	Authority() solana.PublicKey
	Bump() uint8
	// Accounts are the token accounts the operation touched, in instruction
	// order.
	Accounts() []solana.PublicKey
	Commit() uint64
	Link() ipld.Link
	Bytes() []byte
	String() string
}

type receipt struct {
	model     ReceiptModel
	signer    solana.PublicKey
	authority solana.PublicKey
	accounts  []solana.PublicKey
	link      ipld.Link
	bytes     []byte
}

var _ Receipt = (*receipt)(nil)

func (r *receipt) Operation() Operation {
	return Operation(r.model.Operation)
}

func (r *receipt) Amount() uint64 {
	return r.model.Amount
}

func (r *receipt) Signer() solana.PublicKey {
	return r.signer
}

func (r *receipt) Authority() solana.PublicKey {
	return r.authority
}

func (r *receipt) Bump() uint8 {
	return r.model.Bump
}

func (r *receipt) Accounts() []solana.PublicKey {
	return append([]solana.PublicKey(nil), r.accounts...)
}

func (r *receipt) Commit() uint64 {
	return r.model.Commit
}

func (r *receipt) Link() ipld.Link {
	return r.link
}

func (r *receipt) Bytes() []byte {
	return r.bytes
}

func (r *receipt) String() string {
	accts := make([]string, 0, len(r.accounts))
	for _, a := range r.accounts {
		accts = append(accts, a.String())
	}
	return fmt.Sprintf("%s %d via %s (bump %d) on [%s] at commit %d",
		r.model.Operation, r.model.Amount, r.authority, r.model.Bump, strings.Join(accts, ", "), r.model.Commit)
}

// New issues a receipt for an operation performed with auth.
func New(op Operation, amount uint64, auth authority.Authority, commit uint64, accounts ...solana.PublicKey) (Receipt, error) {
	model := ReceiptModel{
		Operation: string(op),
		Amount:    amount,
		Signer:    auth.Seed().String(),
		Authority: auth.Address().String(),
		Bump:      auth.Bump(),
		Accounts:  make([]string, 0, len(accounts)),
		Commit:    commit,
	}
	for _, a := range accounts {
		model.Accounts = append(model.Accounts, a.String())
	}
	bytes, err := ipld.Marshal(dagcbor.Encode, &model, typ)
	if err != nil {
		return nil, fmt.Errorf("encoding receipt: %w", err)
	}
	return build(model, bytes)
}

// Decode reads a receipt from its dag-cbor encoding.
func Decode(b []byte) (Receipt, error) {
	model := ReceiptModel{}
	_, err := ipld.Unmarshal(b, dagcbor.Decode, &model, typ)
	if err != nil {
		return nil, fmt.Errorf("decoding receipt: %w", err)
	}
	return build(model, b)
}

func build(model ReceiptModel, bytes []byte) (*receipt, error) {
	signer, err := solana.PublicKeyFromBase58(model.Signer)
	if err != nil {
		return nil, fmt.Errorf("parsing signer: %w", err)
	}
	auth, err := solana.PublicKeyFromBase58(model.Authority)
	if err != nil {
		return nil, fmt.Errorf("parsing authority: %w", err)
	}
	accounts := make([]solana.PublicKey, 0, len(model.Accounts))
	for _, s := range model.Accounts {
		a, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return nil, fmt.Errorf("parsing account: %w", err)
		}
		accounts = append(accounts, a)
	}

	c, err := cid.Prefix{
		Version:  1,
		Codec:    uint64(multicodec.DagCbor),
		MhType:   multihash.SHA2_256,
		MhLength: -1,
	}.Sum(bytes)
	if err != nil {
		return nil, fmt.Errorf("hashing receipt: %w", err)
	}

	return &receipt{
		model:     model,
		signer:    signer,
		authority: auth,
		accounts:  accounts,
		link:      cidlink.Link{Cid: c},
		bytes:     bytes,
	}, nil
}
