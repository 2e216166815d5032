package core

// propertyPageMaxLength is the ring buffer's per-page capacity. 256 slots
// of 256 entries gives 65,536 most-recent values retained per property.
const propertyPageMaxLength = 256

const propertyPageCount = 256

// updateProperties appends one reported value per update entry, rotating
// the property's current page when it fills.
func (h *handlerCtx) updateProperties(p *UpdatePropertiesAction) error {
	record, err := h.a.GetRecord(p.RecordID)
	if err != nil {
		return err
	}
	if record == nil {
		return InvalidTransactionf("record does not exist: %s", p.RecordID)
	}
	if record.FieldFinal {
		return InvalidTransactionf("record is final: %s", p.RecordID)
	}

	for _, update := range p.Properties {
		if err := h.applyOneUpdate(p.RecordID, update); err != nil {
			return err
		}
	}
	return nil
}

func (h *handlerCtx) applyOneUpdate(recordID string, update PropertyValue) error {
	prop, err := h.a.GetProperty(recordID, update.Name)
	if err != nil {
		return err
	}
	if prop == nil {
		return InvalidTransactionf("record does not have provided property: %s", update.Name)
	}

	reporterIndex := -1
	for _, r := range prop.Reporters {
		if r.PublicKey == h.signer && r.Authorized {
			reporterIndex = r.Index
			break
		}
	}
	if reporterIndex < 0 {
		return InvalidTransactionf("reporter is not authorized: %s", h.signer)
	}

	if prop.Fixed {
		return InvalidTransactionf("property is fixed and cannot be updated: %s", prop.Name)
	}
	if update.DataType != prop.DataType {
		return InvalidTransactionf("update has wrong type for property: %s", prop.Name)
	}

	schema := PropertySchema{
		Name:             prop.Name,
		DataType:         prop.DataType,
		EnumOptions:      prop.EnumOptions,
		StructProperties: prop.StructProperties,
	}
	value, err := buildReportedValue(update, schema)
	if err != nil {
		return err
	}

	pageNumber := prop.CurrentPage
	page, err := h.a.GetPropertyPage(recordID, prop.Name, pageNumber)
	if err != nil {
		return err
	}
	if page == nil {
		return InvalidTransactionf("property page does not exist: %s page %d", prop.Name, pageNumber)
	}

	page.ReportedValues = append(page.ReportedValues, ReportedValue{
		ReporterIndex: reporterIndex,
		Timestamp:     h.timestamp,
		Value:         value,
	})
	sortReportedValues(page.ReportedValues)

	if err := h.a.SetPropertyPage(*page); err != nil {
		return err
	}

	if len(page.ReportedValues) >= propertyPageMaxLength {
		return h.rotatePage(recordID, prop, pageNumber)
	}
	return nil
}

// rotatePage advances a property's current page once its active page has
// filled. next wraps from 256 back to 1; the new head page is reset, not
// preserved, and wrapped becomes true the first time rotation returns to
// page 1.
func (h *handlerCtx) rotatePage(recordID string, prop *Property, pageNumber int) error {
	next := pageNumber + 1
	if next > propertyPageCount {
		next = 1
	}

	newPage, err := h.a.GetPropertyPage(recordID, prop.Name, next)
	if err != nil {
		return err
	}
	if newPage == nil {
		newPage = &PropertyPage{RecordID: recordID, Name: prop.Name, PageNumber: next}
	} else {
		newPage.ReportedValues = nil
	}
	if err := h.a.SetPropertyPage(*newPage); err != nil {
		return err
	}

	prop.CurrentPage = next
	if next == 1 && !prop.Wrapped {
		prop.Wrapped = true
	}
	return h.a.SetProperty(*prop)
}

func sortReportedValues(values []ReportedValue) {
	// insertion sort: pages cap at 256 entries, so this stays cheap and
	// keeps the (timestamp, reporter_index) ordering stable.
	for i := 1; i < len(values); i++ {
		v := values[i]
		j := i - 1
		for j >= 0 && reportedValueLess(v, values[j]) {
			values[j+1] = values[j]
			j--
		}
		values[j+1] = v
	}
}

func reportedValueLess(a, b ReportedValue) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.ReporterIndex < b.ReporterIndex
}

// revokeReporter is a supplemental action (see SPEC_FULL.md) that marks a
// named reporter unauthorized without removing it from the append-only
// reporter sequence. Revoking an already-unauthorized reporter is a no-op
// success.
func (h *handlerCtx) revokeReporter(p *RevokeReporterAction) error {
	record, err := h.a.GetRecord(p.RecordID)
	if err != nil {
		return err
	}
	if record == nil {
		return InvalidTransactionf("record does not exist: %s", p.RecordID)
	}
	if record.FieldFinal {
		return InvalidTransactionf("record is final: %s", p.RecordID)
	}

	owner, ok := record.CurrentOwner()
	if !ok || owner.ParticipantID != h.signer {
		return InvalidTransactionf("only the current owner can revoke a reporter: %s", p.RecordID)
	}

	prop, err := h.a.GetProperty(p.RecordID, p.PropertyName)
	if err != nil {
		return err
	}
	if prop == nil {
		return InvalidTransactionf("property does not exist: %s", p.PropertyName)
	}

	found := -1
	for i, r := range prop.Reporters {
		if r.PublicKey == p.ReporterPublicKey {
			found = i
			break
		}
	}
	if found < 0 {
		return InvalidTransactionf("reporter not found: %s", p.ReporterPublicKey)
	}
	if !prop.Reporters[found].Authorized {
		return nil
	}

	prop.Reporters[found].Authorized = false
	return h.a.SetProperty(*prop)
}
