package watch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress validates and converts a hex contract address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseTokenIDs converts string position ids into uint64 values.
func ParseTokenIDs(inputs []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		id, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid token id: %s", input)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
