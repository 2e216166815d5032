package core

// This file declares the entity and value types stored in state, the way
// the teacher's common_structs.go centralises struct definitions referenced
// across the module.

// DataType tags a property value's shape.
type DataType int

const (
	DataTypeUnset DataType = iota
	DataTypeBytes
	DataTypeBoolean
	DataTypeNumber
	DataTypeString
	DataTypeEnum
	DataTypeStruct
	DataTypeLocation
)

// Location is a point value for DataTypeLocation properties.
type Location struct {
	Latitude  int64 `json:"latitude"`
	Longitude int64 `json:"longitude"`
}

// PropertyValue is a tagged union over the data types a reported value or a
// CreateRecord seed value can carry. Only the field matching DataType is
// meaningful.
type PropertyValue struct {
	Name        string          `json:"name"`
	DataType    DataType        `json:"data_type"`
	BytesValue  []byte          `json:"bytes_value,omitempty"`
	BoolValue   bool            `json:"bool_value,omitempty"`
	NumberValue int64           `json:"number_value,omitempty"`
	Exponent    int32           `json:"exponent,omitempty"`
	StringValue string          `json:"string_value,omitempty"`
	EnumValue   int32           `json:"enum_value,omitempty"`
	StructValue []PropertyValue `json:"struct_value,omitempty"`
	LocationVal Location        `json:"location_value,omitempty"`
}

// PropertySchema describes one field of a Table, copied verbatim onto each
// Record's Property when the record is created.
type PropertySchema struct {
	Name            string           `json:"name"`
	DataType        DataType         `json:"data_type"`
	Required        bool             `json:"required"`
	Fixed           bool             `json:"fixed"`
	Delayed         bool             `json:"delayed"`
	NumberExponent  int32            `json:"number_exponent"`
	EnumOptions     []string         `json:"enum_options,omitempty"`
	StructProperties []PropertySchema `json:"struct_properties,omitempty"`
	Unit            string           `json:"unit"`
}

// Table is keyed by Name.
type Table struct {
	Name       string           `json:"name"`
	Properties []PropertySchema `json:"properties"`
}

// CreditBalance is one entry in a participant's append-only balance or
// credit history.
type CreditBalance struct {
	ProposalID    string `json:"proposal_id"`
	Timestamp     uint64 `json:"timestamp"`
	DgCoinAmount  uint64 `json:"dg_coin_amount"`
}

// Participant is keyed by PublicKey.
type Participant struct {
	PublicKey       string          `json:"public_key"`
	Name            string          `json:"name"`
	Timestamp       uint64          `json:"timestamp"`
	DgCoinBalances  []CreditBalance `json:"dg_coin_balances"`
	DgCoinCredits   []CreditBalance `json:"dg_coin_credits"`
}

// CurrentBalance returns the last balance entry's amount, or zero if none
// exist yet. Current (balance/credit/owner/custodian) is always the last
// element of the corresponding append-only sequence.
func (p *Participant) CurrentBalance() uint64 {
	if len(p.DgCoinBalances) == 0 {
		return 0
	}
	return p.DgCoinBalances[len(p.DgCoinBalances)-1].DgCoinAmount
}

// CurrentCredit returns the last credit entry's amount, or zero if none
// exist yet.
func (p *Participant) CurrentCredit() uint64 {
	if len(p.DgCoinCredits) == 0 {
		return 0
	}
	return p.DgCoinCredits[len(p.DgCoinCredits)-1].DgCoinAmount
}

// AssociatedParticipant records a participant taking on a role (owner or
// custodian) over a record at a point in time.
type AssociatedParticipant struct {
	ParticipantID string `json:"participant_id"`
	Timestamp     uint64 `json:"timestamp"`
}

// Record is keyed by RecordID.
type Record struct {
	RecordID    string                   `json:"record_id"`
	Table       string                   `json:"table"`
	FieldFinal  bool                     `json:"field_final"`
	Owners      []AssociatedParticipant  `json:"owners"`
	Custodians  []AssociatedParticipant  `json:"custodians"`
}

// CurrentOwner returns the last owner entry, or the zero value with ok=false
// if the record somehow has no owners (a state invariant violation outside
// of a record under construction).
func (r *Record) CurrentOwner() (AssociatedParticipant, bool) {
	if len(r.Owners) == 0 {
		return AssociatedParticipant{}, false
	}
	return r.Owners[len(r.Owners)-1], true
}

// CurrentCustodian returns the last custodian entry, or ok=false if empty.
func (r *Record) CurrentCustodian() (AssociatedParticipant, bool) {
	if len(r.Custodians) == 0 {
		return AssociatedParticipant{}, false
	}
	return r.Custodians[len(r.Custodians)-1], true
}

// Reporter is a participant authorized to append reported values to a
// specific property, identified by a stable ordinal assigned at first
// inclusion.
type Reporter struct {
	PublicKey  string `json:"public_key"`
	Authorized bool   `json:"authorized"`
	Index      int    `json:"index"`
}

// Property is keyed by (RecordID, Name).
type Property struct {
	RecordID        string           `json:"record_id"`
	Name            string           `json:"name"`
	DataType        DataType         `json:"data_type"`
	Fixed           bool             `json:"fixed"`
	Delayed         bool             `json:"delayed"`
	NumberExponent  int32            `json:"number_exponent"`
	EnumOptions     []string         `json:"enum_options,omitempty"`
	StructProperties []PropertySchema `json:"struct_properties,omitempty"`
	Unit            string           `json:"unit"`
	Reporters       []Reporter       `json:"reporters"`
	CurrentPage     int              `json:"current_page"`
	Wrapped         bool             `json:"wrapped"`
}

// ReportedValue is one timestamped entry in a PropertyPage.
type ReportedValue struct {
	ReporterIndex int           `json:"reporter_index"`
	Timestamp     uint64        `json:"timestamp"`
	Value         PropertyValue `json:"value"`
}

// PropertyPage is keyed by (RecordID, Name, PageNumber).
type PropertyPage struct {
	RecordID       string          `json:"record_id"`
	Name           string          `json:"name"`
	PageNumber     int             `json:"page_number"`
	ReportedValues []ReportedValue `json:"reported_values"`
}

// ProposalStatus is the lifecycle state of a Proposal.
type ProposalStatus int

const (
	ProposalStatusOpen ProposalStatus = iota
	ProposalStatusAccepted
	ProposalStatusRejected
	ProposalStatusCanceled
	ProposalStatusClosed
)

// ProposalRole is the verb a Proposal carries out once answered.
type ProposalRole int

const (
	RoleTransferOwnership ProposalRole = iota
	RoleTransferCustodianship
	RoleAuthorizeReporter
	RoleCreditDGC
	RoleTransferDGC
	RoleBuyDGC
	RoleSellDGC
)

// Proposal is keyed by ProposalID.
type Proposal struct {
	ProposalID            string         `json:"proposal_id"`
	Status                ProposalStatus `json:"status"`
	Role                  ProposalRole   `json:"role"`
	Timestamp             uint64         `json:"timestamp"`
	IssuingParticipant    string         `json:"issuing_participant"`
	ReceivingParticipant  string         `json:"receiving_participant"`
	RecordID              string         `json:"record_id"`
	Properties            []string       `json:"properties"`
	DgCoinAmount          uint64         `json:"dg_coin_amount"`
	DgCoinExchanged       uint64         `json:"dg_coin_exchanged"`
	CurrencyIsoCodes      string         `json:"currency_iso_codes"`
	CurrencyQuoteAmount   uint64         `json:"currency_quote_amount"`
}

// Exchange is keyed by (BuyProposalID, SellProposalID); it memoizes the
// settlement terms for one matched buy/sell pair.
type Exchange struct {
	BuyProposalID    string  `json:"buy_proposal_id"`
	SellProposalID   string  `json:"sell_proposal_id"`
	Timestamp        uint64  `json:"timestamp"`
	CurrencyIsoCodes string  `json:"currency_iso_codes"`
	LastCurrencyPrice float64 `json:"last_currency_price"`
	LastDgcPrice      float64 `json:"last_dgc_price"`
}
