package core

import "encoding/json"

// ActionType tags the eight payload variants this family dispatches on, each
// mapped onto a per-variant handler: seven core actions plus RevokeReporter,
// a supplemental, additive action (see DESIGN.md).
type ActionType int

const (
	ActionCreateParticipant ActionType = iota
	ActionCreateTable
	ActionCreateRecord
	ActionFinalizeRecord
	ActionUpdateProperties
	ActionCreateProposal
	ActionAnswerProposal
	ActionRevokeReporter
)

// AnswerResponse is the verb an AnswerProposal action carries.
type AnswerResponse int

const (
	ResponseCancel AnswerResponse = iota
	ResponseReject
	ResponseAccept
	ResponseAutoOpen
	ResponseAutoClose
)

type CreateParticipantAction struct {
	Name string `json:"name"`
}

type CreateTableAction struct {
	Name       string           `json:"name"`
	Properties []PropertySchema `json:"properties"`
}

type CreateRecordAction struct {
	RecordID   string          `json:"record_id"`
	Table      string          `json:"table"`
	Properties []PropertyValue `json:"properties"`
}

type FinalizeRecordAction struct {
	RecordID string `json:"record_id"`
}

type UpdatePropertiesAction struct {
	RecordID   string          `json:"record_id"`
	Properties []PropertyValue `json:"properties"`
}

type CreateProposalAction struct {
	ProposalID           string       `json:"proposal_id"`
	Role                 ProposalRole `json:"role"`
	ReceivingParticipant string       `json:"receiving_participant"`
	RecordID             string       `json:"record_id"`
	Properties           []string     `json:"properties"`
	DgCoinAmount         uint64       `json:"dg_coin_amount"`
	CurrencyIsoCodes     string       `json:"currency_iso_codes"`
	CurrencyQuoteAmount  uint64       `json:"currency_quote_amount"`
}

type ExchangeInput struct {
	BuyProposalID     string  `json:"buy_proposal_id"`
	SellProposalID    string  `json:"sell_proposal_id"`
	Timestamp         uint64  `json:"timestamp"`
	CurrencyIsoCodes  string  `json:"currency_iso_codes"`
	LastCurrencyPrice float64 `json:"last_currency_price"`
	LastDgcPrice      float64 `json:"last_dgc_price"`
}

type AnswerProposalAction struct {
	ProposalID           string          `json:"proposal_id"`
	Response             AnswerResponse  `json:"response"`
	Role                 ProposalRole    `json:"role"`
	ReceivingParticipant string          `json:"receiving_participant"`
	RecordID             string          `json:"record_id"`
	DgCoinAmount         uint64          `json:"dg_coin_amount"`
	Exchanges            []ExchangeInput `json:"exchanges"`
}

type RevokeReporterAction struct {
	RecordID          string `json:"record_id"`
	PropertyName      string `json:"property_name"`
	ReporterPublicKey string `json:"reporter_public_key"`
}

// Payload is the decoded, syntactically validated transaction body. Exactly
// one of the per-action fields is non-nil, selected by Action.
type Payload struct {
	Action    ActionType
	Timestamp uint64

	CreateParticipant *CreateParticipantAction
	CreateTable       *CreateTableAction
	CreateRecord      *CreateRecordAction
	FinalizeRecord    *FinalizeRecordAction
	UpdateProperties  *UpdatePropertiesAction
	CreateProposal    *CreateProposalAction
	AnswerProposal    *AnswerProposalAction
	RevokeReporter    *RevokeReporterAction
}

// wirePayload mirrors the externally defined, length-prefixed structured
// record the host decodes and hands to this family as opaque bytes. The
// core treats the wire schema as given; only its JSON shape is assumed here.
type wirePayload struct {
	Action    string `json:"action"`
	Timestamp uint64 `json:"timestamp"`

	CreateParticipant *CreateParticipantAction `json:"create_participant,omitempty"`
	CreateTable       *CreateTableAction       `json:"create_table,omitempty"`
	CreateRecord      *CreateRecordAction      `json:"create_record,omitempty"`
	FinalizeRecord    *FinalizeRecordAction    `json:"finalize_record,omitempty"`
	UpdateProperties  *UpdatePropertiesAction  `json:"update_properties,omitempty"`
	CreateProposal    *CreateProposalAction    `json:"create_proposal,omitempty"`
	AnswerProposal    *AnswerProposalAction    `json:"answer_proposal,omitempty"`
	RevokeReporter    *RevokeReporterAction    `json:"revoke_reporter,omitempty"`
}

const (
	wireActionCreateParticipant = "CREATE_PARTICIPANT"
	wireActionCreateTable       = "CREATE_TABLE"
	wireActionCreateRecord      = "CREATE_RECORD"
	wireActionFinalizeRecord    = "FINALIZE_RECORD"
	wireActionUpdateProperties  = "UPDATE_PROPERTIES"
	wireActionCreateProposal    = "CREATE_PROPOSAL"
	wireActionAnswerProposal    = "ANSWER_PROPOSAL"
	wireActionRevokeReporter    = "REVOKE_REPORTER"
)

// DecodePayload parses and syntactically validates the transaction payload.
// Failure to decode the bytes themselves, or any violation of the checks
// below, surfaces as InvalidTransactionError — never InternalError, since
// the payload is attacker-controlled input, not trusted prior state.
func DecodePayload(raw []byte) (*Payload, error) {
	var wire wirePayload
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, InvalidTransactionf("cannot deserialize payload: %v", err)
	}

	if wire.Timestamp == 0 {
		return nil, InvalidTransactionf("timestamp is not set")
	}

	p := &Payload{Timestamp: wire.Timestamp}

	switch wire.Action {
	case wireActionCreateParticipant:
		if wire.CreateParticipant == nil || wire.CreateParticipant.Name == "" {
			return nil, InvalidTransactionf("participant name cannot be an empty string")
		}
		p.Action = ActionCreateParticipant
		p.CreateParticipant = wire.CreateParticipant

	case wireActionCreateTable:
		ct := wire.CreateTable
		if ct == nil || ct.Name == "" {
			return nil, InvalidTransactionf("table name cannot be an empty string")
		}
		if len(ct.Properties) == 0 {
			return nil, InvalidTransactionf("table must have at least one property")
		}
		for _, prop := range ct.Properties {
			if prop.Name == "" {
				return nil, InvalidTransactionf("property name cannot be an empty string")
			}
		}
		p.Action = ActionCreateTable
		p.CreateTable = ct

	case wireActionCreateRecord:
		if wire.CreateRecord == nil || wire.CreateRecord.RecordID == "" {
			return nil, InvalidTransactionf("record id cannot be empty string")
		}
		p.Action = ActionCreateRecord
		p.CreateRecord = wire.CreateRecord

	case wireActionFinalizeRecord:
		if wire.FinalizeRecord == nil {
			return nil, InvalidTransactionf("finalize_record payload is missing")
		}
		p.Action = ActionFinalizeRecord
		p.FinalizeRecord = wire.FinalizeRecord

	case wireActionUpdateProperties:
		if wire.UpdateProperties == nil {
			return nil, InvalidTransactionf("update_properties payload is missing")
		}
		p.Action = ActionUpdateProperties
		p.UpdateProperties = wire.UpdateProperties

	case wireActionCreateProposal:
		if wire.CreateProposal == nil {
			return nil, InvalidTransactionf("create_proposal payload is missing")
		}
		p.Action = ActionCreateProposal
		p.CreateProposal = wire.CreateProposal

	case wireActionAnswerProposal:
		if wire.AnswerProposal == nil {
			return nil, InvalidTransactionf("answer_proposal payload is missing")
		}
		p.Action = ActionAnswerProposal
		p.AnswerProposal = wire.AnswerProposal

	case wireActionRevokeReporter:
		rr := wire.RevokeReporter
		if rr == nil || rr.RecordID == "" || rr.PropertyName == "" || rr.ReporterPublicKey == "" {
			return nil, InvalidTransactionf("revoke_reporter requires record_id, property_name and reporter_public_key")
		}
		p.Action = ActionRevokeReporter
		p.RevokeReporter = rr

	default:
		return nil, InvalidTransactionf("unknown action: %q", wire.Action)
	}

	return p, nil
}
