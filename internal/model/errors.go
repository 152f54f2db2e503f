package model

import "github.com/rotisserie/eris"

// ErrEmptyName rejects queries with a blank hotel name. This is the one
// fatal input error: nothing is searched or cached for it.
var ErrEmptyName = eris.New("model: hotel name is required")
