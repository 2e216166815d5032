package core

import (
	"encoding/json"
	"testing"

	"dgc-processor/internal/statetest"
)

func mustApply(t *testing.T, proc *Processor, store *statetest.Store, signer string, wire wirePayload) {
	t.Helper()
	raw, err := json.Marshal(wire)
	if err != nil {
		t.Fatalf("marshal wire payload: %v", err)
	}
	if err := proc.Apply(store, signer, raw); err != nil {
		t.Fatalf("Apply(%s) failed: %v", wire.Action, err)
	}
}

func applyExpectInvalid(t *testing.T, proc *Processor, store *statetest.Store, signer string, wire wirePayload) error {
	t.Helper()
	raw, err := json.Marshal(wire)
	if err != nil {
		t.Fatalf("marshal wire payload: %v", err)
	}
	err = proc.Apply(store, signer, raw)
	if !IsInvalidTransaction(err) {
		t.Fatalf("Apply(%s) = %v, want InvalidTransactionError", wire.Action, err)
	}
	return err
}

func TestCreateParticipantDuplicateRejected(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()

	wire := wirePayload{Action: wireActionCreateParticipant, Timestamp: 1, CreateParticipant: &CreateParticipantAction{Name: "Alice"}}
	mustApply(t, proc, store, "alice", wire)
	applyExpectInvalid(t, proc, store, "alice", wire)
}

func TestCreateTableAndRecordLifecycle(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()
	a := NewAccessor(store)

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name: "widgets",
			Properties: []PropertySchema{
				{Name: "color", DataType: DataTypeString, Required: true},
				{Name: "weight", DataType: DataTypeNumber},
			},
		},
	})

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{
			RecordID: "rec-1",
			Table:    "widgets",
			Properties: []PropertyValue{
				{Name: "color", DataType: DataTypeString, StringValue: "red"},
			},
		},
	})

	record, err := a.GetRecord("rec-1")
	if err != nil || record == nil {
		t.Fatalf("GetRecord: %+v, %v", record, err)
	}
	owner, ok := record.CurrentOwner()
	if !ok || owner.ParticipantID != "alice" {
		t.Fatalf("owner = %+v, %v", owner, ok)
	}

	prop, err := a.GetProperty("rec-1", "color")
	if err != nil || prop == nil {
		t.Fatalf("GetProperty color: %+v, %v", prop, err)
	}
	page, err := a.GetPropertyPage("rec-1", "color", 1)
	if err != nil || page == nil || len(page.ReportedValues) != 1 {
		t.Fatalf("GetPropertyPage color page 1: %+v, %v", page, err)
	}
	if page.ReportedValues[0].Value.StringValue != "red" {
		t.Fatalf("seed value = %+v", page.ReportedValues[0].Value)
	}
}

func TestCreateRecordRejectsMissingRequiredProperty(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name: "widgets",
			Properties: []PropertySchema{
				{Name: "color", DataType: DataTypeString, Required: true},
			},
		},
	})

	applyExpectInvalid(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{RecordID: "rec-1", Table: "widgets"},
	})
}

func TestUpdatePropertiesRequiresAuthorizedReporter(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name:       "widgets",
			Properties: []PropertySchema{{Name: "color", DataType: DataTypeString}},
		},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{RecordID: "rec-1", Table: "widgets"},
	})

	applyExpectInvalid(t, proc, store, "mallory", wirePayload{
		Action: wireActionUpdateProperties, Timestamp: 3,
		UpdateProperties: &UpdatePropertiesAction{
			RecordID:   "rec-1",
			Properties: []PropertyValue{{Name: "color", DataType: DataTypeString, StringValue: "blue"}},
		},
	})

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionUpdateProperties, Timestamp: 3,
		UpdateProperties: &UpdatePropertiesAction{
			RecordID:   "rec-1",
			Properties: []PropertyValue{{Name: "color", DataType: DataTypeString, StringValue: "blue"}},
		},
	})
}

// TestPropertyPageRotatesAt256 covers the boundary invariant directly: the
// 256th reported value fills page 1 and rotates the property onto page 2,
// and the 257th value lands on page 2.
func TestPropertyPageRotatesAt256(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()
	a := NewAccessor(store)

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name:       "widgets",
			Properties: []PropertySchema{{Name: "counter", DataType: DataTypeNumber}},
		},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{RecordID: "rec-1", Table: "widgets"},
	})

	for i := 0; i < 255; i++ {
		mustApply(t, proc, store, "alice", wirePayload{
			Action: wireActionUpdateProperties, Timestamp: uint64(3 + i),
			UpdateProperties: &UpdatePropertiesAction{
				RecordID:   "rec-1",
				Properties: []PropertyValue{{Name: "counter", DataType: DataTypeNumber, NumberValue: int64(i)}},
			},
		})
	}

	prop, err := a.GetProperty("rec-1", "counter")
	if err != nil || prop == nil {
		t.Fatalf("GetProperty: %+v, %v", prop, err)
	}
	if prop.CurrentPage != 1 {
		t.Fatalf("after 255 updates, current page = %d, want 1", prop.CurrentPage)
	}

	// the 256th update fills page 1 and rotates to page 2.
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionUpdateProperties, Timestamp: 1000,
		UpdateProperties: &UpdatePropertiesAction{
			RecordID:   "rec-1",
			Properties: []PropertyValue{{Name: "counter", DataType: DataTypeNumber, NumberValue: 255}},
		},
	})

	prop, err = a.GetProperty("rec-1", "counter")
	if err != nil || prop == nil {
		t.Fatalf("GetProperty after rotation: %+v, %v", prop, err)
	}
	if prop.CurrentPage != 2 {
		t.Fatalf("after 256 updates, current page = %d, want 2", prop.CurrentPage)
	}

	page1, err := a.GetPropertyPage("rec-1", "counter", 1)
	if err != nil || page1 == nil || len(page1.ReportedValues) != 256 {
		t.Fatalf("page 1 holds %d values, want 256 (err=%v)", len(page1.ReportedValues), err)
	}

	// the 257th update lands on the new page.
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionUpdateProperties, Timestamp: 1001,
		UpdateProperties: &UpdatePropertiesAction{
			RecordID:   "rec-1",
			Properties: []PropertyValue{{Name: "counter", DataType: DataTypeNumber, NumberValue: 256}},
		},
	})

	page2, err := a.GetPropertyPage("rec-1", "counter", 2)
	if err != nil || page2 == nil || len(page2.ReportedValues) != 1 {
		t.Fatalf("page 2 holds %d values, want 1 (err=%v)", len(page2.ReportedValues), err)
	}
}

func TestEnumUpdateRejectsUnknownOption(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name: "widgets",
			Properties: []PropertySchema{
				{Name: "status", DataType: DataTypeEnum, EnumOptions: []string{"NEW", "USED"}},
			},
		},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{RecordID: "rec-1", Table: "widgets"},
	})

	applyExpectInvalid(t, proc, store, "alice", wirePayload{
		Action: wireActionUpdateProperties, Timestamp: 3,
		UpdateProperties: &UpdatePropertiesAction{
			RecordID:   "rec-1",
			Properties: []PropertyValue{{Name: "status", DataType: DataTypeEnum, StringValue: "REFURBISHED"}},
		},
	})
}

func TestStructUpdateRejectsLengthMismatch(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name: "widgets",
			Properties: []PropertySchema{
				{
					Name:     "dimensions",
					DataType: DataTypeStruct,
					StructProperties: []PropertySchema{
						{Name: "height", DataType: DataTypeNumber},
						{Name: "width", DataType: DataTypeNumber},
					},
				},
			},
		},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{RecordID: "rec-1", Table: "widgets"},
	})

	applyExpectInvalid(t, proc, store, "alice", wirePayload{
		Action: wireActionUpdateProperties, Timestamp: 3,
		UpdateProperties: &UpdatePropertiesAction{
			RecordID: "rec-1",
			Properties: []PropertyValue{{
				Name:     "dimensions",
				DataType: DataTypeStruct,
				StructValue: []PropertyValue{
					{Name: "height", DataType: DataTypeNumber, NumberValue: 10},
				},
			}},
		},
	})
}

func TestProposalTransferOwnershipAcceptReassignsOwnerAndReporters(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()
	a := NewAccessor(store)

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})
	mustApply(t, proc, store, "bob", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Bob"},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name:       "widgets",
			Properties: []PropertySchema{{Name: "color", DataType: DataTypeString}},
		},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{RecordID: "rec-1", Table: "widgets"},
	})

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateProposal, Timestamp: 3,
		CreateProposal: &CreateProposalAction{
			ProposalID:           "prop-1",
			Role:                 RoleTransferOwnership,
			ReceivingParticipant: "bob",
			RecordID:             "rec-1",
		},
	})

	mustApply(t, proc, store, "bob", wirePayload{
		Action: wireActionAnswerProposal, Timestamp: 4,
		AnswerProposal: &AnswerProposalAction{
			ProposalID:           "prop-1",
			Response:             ResponseAccept,
			Role:                 RoleTransferOwnership,
			ReceivingParticipant: "bob",
			RecordID:             "rec-1",
		},
	})

	record, err := a.GetRecord("rec-1")
	if err != nil || record == nil {
		t.Fatalf("GetRecord: %+v, %v", record, err)
	}
	owner, ok := record.CurrentOwner()
	if !ok || owner.ParticipantID != "bob" {
		t.Fatalf("owner after accept = %+v, %v", owner, ok)
	}

	prop, err := a.GetProperty("rec-1", "color")
	if err != nil || prop == nil {
		t.Fatalf("GetProperty: %+v, %v", prop, err)
	}
	var aliceAuthorized, bobAuthorized bool
	for _, r := range prop.Reporters {
		if r.PublicKey == "alice" {
			aliceAuthorized = r.Authorized
		}
		if r.PublicKey == "bob" {
			bobAuthorized = r.Authorized
		}
	}
	if aliceAuthorized {
		t.Fatalf("prior owner alice should be deauthorized as a reporter")
	}
	if !bobAuthorized {
		t.Fatalf("new owner bob should be authorized as a reporter")
	}

	proposal, err := a.GetProposal("prop-1")
	if err != nil || proposal == nil || proposal.Status != ProposalStatusAccepted {
		t.Fatalf("proposal status = %+v, %v", proposal, err)
	}
}

func TestRevokeReporterIsIdempotent(t *testing.T) {
	store := statetest.NewStore()
	proc := NewProcessor()
	a := NewAccessor(store)

	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateParticipant, Timestamp: 1,
		CreateParticipant: &CreateParticipantAction{Name: "Alice"},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateTable, Timestamp: 1,
		CreateTable: &CreateTableAction{
			Name:       "widgets",
			Properties: []PropertySchema{{Name: "color", DataType: DataTypeString}},
		},
	})
	mustApply(t, proc, store, "alice", wirePayload{
		Action: wireActionCreateRecord, Timestamp: 2,
		CreateRecord: &CreateRecordAction{RecordID: "rec-1", Table: "widgets"},
	})

	revoke := wirePayload{
		Action: wireActionRevokeReporter, Timestamp: 3,
		RevokeReporter: &RevokeReporterAction{RecordID: "rec-1", PropertyName: "color", ReporterPublicKey: "alice"},
	}
	mustApply(t, proc, store, "alice", revoke)
	mustApply(t, proc, store, "alice", revoke)

	prop, err := a.GetProperty("rec-1", "color")
	if err != nil || prop == nil {
		t.Fatalf("GetProperty: %+v, %v", prop, err)
	}
	if prop.Reporters[0].Authorized {
		t.Fatalf("reporter should be deauthorized after revoke")
	}
}
