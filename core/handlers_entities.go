package core

// createParticipant registers signer as a Participant. Precondition: no
// participant exists at signer yet.
func (h *handlerCtx) createParticipant(p *CreateParticipantAction) error {
	existing, err := h.a.GetParticipant(h.signer)
	if err != nil {
		return err
	}
	if existing != nil {
		return InvalidTransactionf("participant already exists: %s", h.signer)
	}

	return h.a.SetParticipant(Participant{
		PublicKey: h.signer,
		Name:      p.Name,
		Timestamp: h.timestamp,
	})
}

// createTable stores a schema verbatim under name. The source intentionally
// skips checking that the signer is a registered participant here (see
// DESIGN.md); this core matches that behavior.
func (h *handlerCtx) createTable(p *CreateTableAction) error {
	existing, err := h.a.GetTable(p.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return InvalidTransactionf("table already exists: %s", p.Name)
	}

	return h.a.SetTable(Table{
		Name:       p.Name,
		Properties: p.Properties,
	})
}

// createRecord creates a Record, one Property per schema entry (copying the
// schema fields and seeding a single authorized reporter — the signer), and
// one PropertyPage per property, seeded with a reported value when the
// payload provided one.
func (h *handlerCtx) createRecord(p *CreateRecordAction) error {
	participant, err := h.a.GetParticipant(h.signer)
	if err != nil {
		return err
	}
	if participant == nil {
		return InvalidTransactionf("participant is not registered: %s", h.signer)
	}

	existingRecord, err := h.a.GetRecord(p.RecordID)
	if err != nil {
		return err
	}
	if existingRecord != nil {
		return InvalidTransactionf("record already exists: %s", p.RecordID)
	}

	table, err := h.a.GetTable(p.Table)
	if err != nil {
		return err
	}
	if table == nil {
		return InvalidTransactionf("table does not exist: %s", p.Table)
	}

	provided := make(map[string]PropertyValue, len(p.Properties))
	for _, v := range p.Properties {
		provided[v.Name] = v
	}

	for _, schema := range table.Properties {
		if schema.Required {
			if _, ok := provided[schema.Name]; !ok {
				return InvalidTransactionf("required property not provided: %s", schema.Name)
			}
		}
	}

	schemaByName := make(map[string]PropertySchema, len(table.Properties))
	for _, schema := range table.Properties {
		schemaByName[schema.Name] = schema
	}
	for _, v := range p.Properties {
		schema, ok := schemaByName[v.Name]
		if !ok {
			return InvalidTransactionf("property not in table schema: %s", v.Name)
		}
		if v.DataType != schema.DataType {
			return InvalidTransactionf("property %s has wrong type", v.Name)
		}
		if schema.Delayed {
			return InvalidTransactionf("property %s is delayed and cannot be set at creation", v.Name)
		}
	}

	record := Record{
		RecordID:   p.RecordID,
		Table:      p.Table,
		FieldFinal: false,
		Owners:     []AssociatedParticipant{{ParticipantID: h.signer, Timestamp: h.timestamp}},
		Custodians: []AssociatedParticipant{{ParticipantID: h.signer, Timestamp: h.timestamp}},
	}
	if err := h.a.SetRecord(record); err != nil {
		return err
	}

	for _, schema := range table.Properties {
		prop := Property{
			RecordID:         p.RecordID,
			Name:             schema.Name,
			DataType:         schema.DataType,
			Fixed:            schema.Fixed,
			Delayed:          schema.Delayed,
			NumberExponent:   schema.NumberExponent,
			EnumOptions:      schema.EnumOptions,
			StructProperties: schema.StructProperties,
			Unit:             schema.Unit,
			Reporters:        []Reporter{{PublicKey: h.signer, Authorized: true, Index: 0}},
			CurrentPage:      1,
			Wrapped:          false,
		}
		if err := h.a.SetProperty(prop); err != nil {
			return err
		}

		page := PropertyPage{RecordID: p.RecordID, Name: schema.Name, PageNumber: 1}
		if v, ok := provided[schema.Name]; ok {
			value, err := buildReportedValue(v, schema)
			if err != nil {
				return err
			}
			page.ReportedValues = []ReportedValue{{ReporterIndex: 0, Timestamp: h.timestamp, Value: value}}
		}
		if err := h.a.SetPropertyPage(page); err != nil {
			return err
		}
	}

	return nil
}

// finalizeRecord marks a record final, after which its properties, owners,
// and custodians admit no further mutation.
func (h *handlerCtx) finalizeRecord(p *FinalizeRecordAction) error {
	record, err := h.a.GetRecord(p.RecordID)
	if err != nil {
		return err
	}
	if record == nil {
		return InvalidTransactionf("record does not exist: %s", p.RecordID)
	}

	owner, ok := record.CurrentOwner()
	if !ok || owner.ParticipantID != h.signer {
		return InvalidTransactionf("only the current owner can finalize record: %s", p.RecordID)
	}
	custodian, ok := record.CurrentCustodian()
	if !ok || custodian.ParticipantID != h.signer {
		return InvalidTransactionf("only the current custodian can finalize record: %s", p.RecordID)
	}

	if record.FieldFinal {
		return InvalidTransactionf("record is already final: %s", p.RecordID)
	}

	record.FieldFinal = true
	return h.a.SetRecord(*record)
}
