package meter

import (
	"time"

	"github.com/Carey99/rentledger/id"
)

// UtilityReading is one recorded delta of metered consumption for a
// tenancy (units of electricity, water, etc). Readings are buffered and
// flushed in batches; monthly aggregation prices them onto bills.
type UtilityReading struct {
	ID             id.ReadingID      `json:"id"`
	TenancyID      id.TenancyID      `json:"tenancy_id"`
	LandlordID     string            `json:"landlord_id"`
	UtilityType    string            `json:"utility_type"`
	Units          int64             `json:"units"`
	Timestamp      time.Time         `json:"timestamp"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
