package solana

import "encoding/binary"

// SPL Token instruction discriminators.
const (
	tokenInstructionBurn         byte = 8
	tokenInstructionCloseAccount byte = 9
	tokenInstructionRevoke       byte = 13
)

// MaxReclaimAccounts caps CloseAccount instructions per transaction so it
// stays within the packet size and compute limits.
const MaxReclaimAccounts = 10

// AccountMeta is one account reference of an instruction.
type AccountMeta struct {
	PublicKey  PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// CloseAccount returns the account's rent to dest. The token balance must be zero.
func CloseAccount(account, dest, owner PublicKey) Instruction {
	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: account, IsWritable: true},
			{PublicKey: dest, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
		},
		Data: []byte{tokenInstructionCloseAccount},
	}
}

// Burn destroys amount raw units from account.
func Burn(account, mint, owner PublicKey, amount uint64) Instruction {
	data := make([]byte, 9)
	data[0] = tokenInstructionBurn
	binary.LittleEndian.PutUint64(data[1:], amount)
	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: account, IsWritable: true},
			{PublicKey: mint, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
		},
		Data: data,
	}
}

// Revoke clears the account's delegate. Revoking an account without a
// delegate succeeds and changes nothing.
func Revoke(account, owner PublicKey) Instruction {
	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: account, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
		},
		Data: []byte{tokenInstructionRevoke},
	}
}
