package transfer

import "errors"

var ErrNotFactory = errors.New("transfer: minting requires the factory account")
