package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// SignatureSize is the length of an ed25519 signature.
const SignatureSize = 64

// maxTransactionSize is the largest serialized transaction a node accepts.
const maxTransactionSize = 1232

// ErrTransactionTooLarge is returned when a transaction does not fit in a packet.
var ErrTransactionTooLarge = errors.New("transaction exceeds 1232 bytes")

// Message is a compiled legacy transaction message.
type Message struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
	AccountKeys                 []PublicKey
	RecentBlockhash             [32]byte
	Instructions                []compiledInstruction
}

type compiledInstruction struct {
	programIDIndex uint8
	accounts       []uint8
	data           []byte
}

type keyFlags struct {
	signer   bool
	writable bool
}

// NewMessage compiles instructions into a legacy message paid by feePayer.
// Keys are ordered writable signers, readonly signers, writable
// non-signers, then readonly non-signers, with the fee payer first.
func NewMessage(feePayer PublicKey, blockhash [32]byte, instructions []Instruction) (*Message, error) {
	if len(instructions) == 0 {
		return nil, errors.New("no instructions")
	}

	order := []PublicKey{feePayer}
	flags := map[PublicKey]*keyFlags{feePayer: {signer: true, writable: true}}
	add := func(pk PublicKey, signer, writable bool) {
		f, ok := flags[pk]
		if !ok {
			f = &keyFlags{}
			flags[pk] = f
			order = append(order, pk)
		}
		f.signer = f.signer || signer
		f.writable = f.writable || writable
	}
	for _, ix := range instructions {
		for _, acc := range ix.Accounts {
			add(acc.PublicKey, acc.IsSigner, acc.IsWritable)
		}
		add(ix.ProgramID, false, false)
	}

	var groups [4][]PublicKey
	for _, pk := range order {
		f := flags[pk]
		switch {
		case f.signer && f.writable:
			groups[0] = append(groups[0], pk)
		case f.signer:
			groups[1] = append(groups[1], pk)
		case f.writable:
			groups[2] = append(groups[2], pk)
		default:
			groups[3] = append(groups[3], pk)
		}
	}

	keys := make([]PublicKey, 0, len(order))
	for _, g := range groups {
		keys = append(keys, g...)
	}
	if len(keys) > 256 {
		return nil, fmt.Errorf("too many accounts: %d", len(keys))
	}
	index := make(map[PublicKey]uint8, len(keys))
	for i, pk := range keys {
		index[pk] = uint8(i)
	}

	msg := &Message{
		NumRequiredSignatures:       uint8(len(groups[0]) + len(groups[1])),
		NumReadonlySignedAccounts:   uint8(len(groups[1])),
		NumReadonlyUnsignedAccounts: uint8(len(groups[3])),
		AccountKeys:                 keys,
		RecentBlockhash:             blockhash,
	}
	for _, ix := range instructions {
		ci := compiledInstruction{programIDIndex: index[ix.ProgramID], data: ix.Data}
		for _, acc := range ix.Accounts {
			ci.accounts = append(ci.accounts, index[acc.PublicKey])
		}
		msg.Instructions = append(msg.Instructions, ci)
	}
	return msg, nil
}

// Serialize encodes the message in the legacy wire format.
func (m *Message) Serialize() []byte {
	buf := []byte{m.NumRequiredSignatures, m.NumReadonlySignedAccounts, m.NumReadonlyUnsignedAccounts}
	buf = appendCompactU16(buf, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		buf = append(buf, k[:]...)
	}
	buf = append(buf, m.RecentBlockhash[:]...)
	buf = appendCompactU16(buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf = append(buf, ix.programIDIndex)
		buf = appendCompactU16(buf, len(ix.accounts))
		buf = append(buf, ix.accounts...)
		buf = appendCompactU16(buf, len(ix.data))
		buf = append(buf, ix.data...)
	}
	return buf
}

// Transaction is a message plus its signatures.
type Transaction struct {
	Signatures [][SignatureSize]byte
	Message    *Message
}

// SignTransaction builds a transaction signed by every required signer.
// Signers must cover exactly the message's signing keys.
func SignTransaction(msg *Message, signers ...ed25519.PrivateKey) (*Transaction, error) {
	byKey := make(map[PublicKey]ed25519.PrivateKey, len(signers))
	for _, s := range signers {
		var pk PublicKey
		copy(pk[:], s.Public().(ed25519.PublicKey))
		byKey[pk] = s
	}

	payload := msg.Serialize()
	tx := &Transaction{Message: msg, Signatures: make([][SignatureSize]byte, msg.NumRequiredSignatures)}
	for i := 0; i < int(msg.NumRequiredSignatures); i++ {
		key, ok := byKey[msg.AccountKeys[i]]
		if !ok {
			return nil, fmt.Errorf("missing signer for %s", msg.AccountKeys[i])
		}
		copy(tx.Signatures[i][:], ed25519.Sign(key, payload))
	}
	return tx, nil
}

// Serialize encodes the signed transaction.
func (tx *Transaction) Serialize() ([]byte, error) {
	buf := appendCompactU16(nil, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		buf = append(buf, sig[:]...)
	}
	buf = append(buf, tx.Message.Serialize()...)
	if len(buf) > maxTransactionSize {
		return nil, ErrTransactionTooLarge
	}
	return buf, nil
}

// Base64 returns the wire encoding expected by sendTransaction.
func (tx *Transaction) Base64() (string, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Signature returns the fee payer's signature in base58, which is the
// transaction id.
func (tx *Transaction) Signature() string {
	if len(tx.Signatures) == 0 {
		return ""
	}
	return base58.Encode(tx.Signatures[0][:])
}

// appendCompactU16 writes the shortvec length encoding.
func appendCompactU16(buf []byte, n int) []byte {
	v := uint16(n) //nolint:gosec // lengths are bounded by the packet size
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}
