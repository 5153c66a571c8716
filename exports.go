package rentledger

import "github.com/Carey99/rentledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	KES  = types.KES
	USD  = types.USD
	EUR  = types.EUR
	GBP  = types.GBP
	TZS  = types.TZS
	UGX  = types.UGX
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
