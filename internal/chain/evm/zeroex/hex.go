package zeroex

import "github.com/ethereum/go-ethereum/common/hexutil"

func decodeHex(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return nil, nil
	}
	return hexutil.Decode(s)
}
