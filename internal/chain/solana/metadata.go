package solana

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	metadataKeyV1 = 4
	// key (1) + update authority (32) + mint (32)
	metadataHeaderSize = 65
	maxNameLength      = 32
	maxSymbolLength    = 10
)

// ErrInvalidMetadata is returned for data that is not a Metaplex metadata account.
var ErrInvalidMetadata = errors.New("invalid token metadata account")

// TokenMetadata holds the display fields of a Metaplex metadata account.
type TokenMetadata struct {
	Name   string
	Symbol string
}

// MetadataAddress returns the Metaplex metadata PDA of mint.
func MetadataAddress(mint PublicKey) (PublicKey, error) {
	pda, _, err := FindProgramAddress([][]byte{
		[]byte("metadata"),
		MetadataProgramID[:],
		mint[:],
	}, MetadataProgramID)
	return pda, err
}

// ParseMetadata decodes the name and symbol of a metadata account.
// Fixed-width fields are right padded with NULs, which are trimmed.
func ParseMetadata(data []byte) (*TokenMetadata, error) {
	if len(data) < metadataHeaderSize || data[0] != metadataKeyV1 {
		return nil, ErrInvalidMetadata
	}
	offset := metadataHeaderSize

	name, offset, err := readBorshString(data, offset, maxNameLength)
	if err != nil {
		return nil, err
	}
	symbol, _, err := readBorshString(data, offset, maxSymbolLength)
	if err != nil {
		return nil, err
	}
	return &TokenMetadata{Name: name, Symbol: symbol}, nil
}

func readBorshString(data []byte, offset, maxLen int) (string, int, error) {
	if offset+4 > len(data) {
		return "", offset, ErrInvalidMetadata
	}
	n := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	// Older accounts store the padded width; anything wider is corrupt.
	if n > maxLen*4 || offset+n > len(data) {
		return "", offset, ErrInvalidMetadata
	}
	s := strings.TrimSpace(strings.TrimRight(string(data[offset:offset+n]), "\x00"))
	return s, offset + n, nil
}
