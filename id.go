package rentledger

import "github.com/Carey99/rentledger/id"

// ID is the primary identifier type for all rentledger entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
