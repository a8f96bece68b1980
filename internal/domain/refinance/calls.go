package refinance

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"loanledger/pkg/bigint"
)

// Op enumerates the term mutations a refinancer may apply. Opcode values are
// part of the commitment encoding and must never be renumbered.
type Op uint8

const (
	OpDecreasePrincipal Op = iota + 1
	OpIncreasePrincipal
	OpSetClosingRate
	OpSetCollateralRequired
	OpSetEndingPrincipal
	OpSetGracePeriod
	OpSetInterestRate
	OpSetPaymentInterval
	OpSetPaymentsRemaining
)

var opNames = map[Op]string{
	OpDecreasePrincipal:     "decreasePrincipal",
	OpIncreasePrincipal:     "increasePrincipal",
	OpSetClosingRate:        "setClosingRate",
	OpSetCollateralRequired: "setCollateralRequired",
	OpSetEndingPrincipal:    "setEndingPrincipal",
	OpSetGracePeriod:        "setGracePeriod",
	OpSetInterestRate:       "setInterestRate",
	OpSetPaymentInterval:    "setPaymentInterval",
	OpSetPaymentsRemaining:  "setPaymentsRemaining",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

func ParseOp(s string) (Op, error) {
	for op, name := range opNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("refinance: unknown op %q", s)
}

// Call is one mutator invocation. Every op takes a single non-negative
// integer argument.
type Call struct {
	Op    Op          `json:"-"`
	Value *bigint.Int `json:"value"`
}

func (c Call) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"op":%q,"value":%q}`, c.Op.String(), c.Value.String())), nil
}

func (c *Call) UnmarshalJSON(b []byte) error {
	var raw struct {
		Op    string      `json:"op"`
		Value *bigint.Int `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	op, err := ParseOp(raw.Op)
	if err != nil {
		return err
	}
	if raw.Value == nil {
		raw.Value = bigint.New(0)
	}
	c.Op = op
	c.Value = raw.Value
	return nil
}

var errValueTooLarge = errors.New("refinance: call value exceeds 256 bits")

// Commitment binds a (refinancer, calls) proposal: keccak256 over the 16-byte
// refinancer id followed by each call as opcode byte plus 32-byte big-endian
// value. An empty call list yields the empty commitment (no proposal).
func Commitment(refinancer string, calls []Call) (string, error) {
	if len(calls) == 0 {
		return "", nil
	}
	id, err := hex.DecodeString(refinancer)
	if err != nil {
		return "", fmt.Errorf("refinance: invalid refinancer id: %w", err)
	}
	buf := make([]byte, 0, len(id)+33*len(calls))
	buf = append(buf, id...)
	for _, c := range calls {
		v := c.Value.Big()
		if v.BitLen() > 256 {
			return "", errValueTooLarge
		}
		word := make([]byte, 32)
		v.FillBytes(word)
		buf = append(buf, byte(c.Op))
		buf = append(buf, word...)
	}
	return hex.EncodeToString(crypto.Keccak256(buf)), nil
}
