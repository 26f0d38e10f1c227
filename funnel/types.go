package funnel

import (
	"time"

	"github.com/shopspring/decimal"
)

type DealType string

const (
	DealTypeNewBusiness      DealType = "newbusiness"
	DealTypeExistingBusiness DealType = "existingbusiness"
)

const (
	DateLayout       = "2006-01-02"
	DefaultPipeline  = "Sales Pipeline"
	FirstDealID      = 1001
	FirstCompanyID   = 111111
	DefaultAnchor    = StageSQL
	DefaultMinOffset = 2
	DefaultMaxOffset = 25
)

// RawDeal is the subset of a CRM deal the generator reads.
type RawDeal struct {
	ExternalID     string
	Name           string
	Amount         string
	CreatedAt      string
	CompanyName    string
	SourceDealType string
	SourceStage    string
}

// StageRow is one (deal, stage) record of a generated stage history.
type StageRow struct {
	DealID         int
	CompanyID      int
	OwnerID        int
	DealName       string
	Amount         string
	Forecast       decimal.NullDecimal
	Probability    float64
	Stage          StageID
	DealType       DealType
	ClosedDate     *time.Time
	CreateDate     *time.Time
	EnteredDate    time.Time
	DaysInStage    *int
	Pipeline       string
	SourceDealType string
	// Ordinal is the deal's position within its company, 0 until sequenced.
	Ordinal int
}
