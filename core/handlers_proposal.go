package core

// createProposal validates the issuing participant's authority over the
// proposal's subject (record ownership/custodianship, coin sufficiency)
// and stores it OPEN.
func (h *handlerCtx) createProposal(p *CreateProposalAction) error {
	issuer, err := h.a.GetParticipant(h.signer)
	if err != nil {
		return err
	}
	if issuer == nil {
		return InvalidTransactionf("issuing participant does not exist: %s", h.signer)
	}

	switch p.Role {
	case RoleTransferOwnership, RoleAuthorizeReporter, RoleTransferCustodianship, RoleCreditDGC, RoleTransferDGC:
		receiver, err := h.a.GetParticipant(p.ReceivingParticipant)
		if err != nil {
			return err
		}
		if receiver == nil {
			return InvalidTransactionf("receiving participant does not exist: %s", p.ReceivingParticipant)
		}
	}

	switch p.Role {
	case RoleTransferOwnership, RoleAuthorizeReporter:
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
		if !ok {
			return InvalidTransactionf("owner not found for record: %s", p.RecordID)
		}
		if owner.ParticipantID != h.signer {
			return InvalidTransactionf("only the owner can create a proposal to change ownership or reporters")
		}

	case RoleTransferCustodianship:
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
		custodian, ok := record.CurrentCustodian()
		if !ok {
			return InvalidTransactionf("custodian not found for record: %s", p.RecordID)
		}
		if custodian.ParticipantID != h.signer {
			return InvalidTransactionf("only the custodian can create a proposal to change custodianship")
		}
	}

	if p.Role == RoleSellDGC {
		if issuer.CurrentBalance()+issuer.CurrentCredit() < p.DgCoinAmount {
			return InvalidTransactionf("balance not enough")
		}
	}
	if p.Role == RoleTransferDGC {
		if issuer.CurrentBalance() < p.DgCoinAmount {
			return InvalidTransactionf("balance not enough")
		}
	}

	return h.a.SetProposal(Proposal{
		ProposalID:           p.ProposalID,
		Status:               ProposalStatusOpen,
		Role:                 p.Role,
		Timestamp:            h.timestamp,
		IssuingParticipant:   h.signer,
		ReceivingParticipant: p.ReceivingParticipant,
		RecordID:             p.RecordID,
		Properties:           p.Properties,
		DgCoinAmount:         p.DgCoinAmount,
		DgCoinExchanged:      0,
		CurrencyIsoCodes:     p.CurrencyIsoCodes,
		CurrencyQuoteAmount:  p.CurrencyQuoteAmount,
	})
}

// answerProposal dispatches on the response verb. autoOPEN/autoCLOSE are the
// market-order idiom: the issuing participant both creates and "answers"
// their own order, settling balances immediately; the receiving participant
// field is not consulted for those two responses.
func (h *handlerCtx) answerProposal(p *AnswerProposalAction) error {
	proposal, err := h.a.GetProposal(p.ProposalID)
	if err != nil {
		return err
	}
	if proposal == nil {
		return InvalidTransactionf("proposal does not exist: %s", p.ProposalID)
	}

	switch p.Response {
	case ResponseCancel:
		if proposal.IssuingParticipant != h.signer {
			return InvalidTransactionf("only the issuing participant can cancel a proposal")
		}
		proposal.Status = ProposalStatusCanceled
		return h.a.SetProposal(*proposal)

	case ResponseReject:
		if proposal.ReceivingParticipant != h.signer {
			return InvalidTransactionf("only the receiving participant can reject a proposal")
		}
		proposal.Status = ProposalStatusRejected
		return h.a.SetProposal(*proposal)

	case ResponseAutoOpen:
		return h.answerAutoFill(p, proposal, ProposalStatusOpen, false)

	case ResponseAutoClose:
		return h.answerAutoFill(p, proposal, ProposalStatusClosed, true)

	case ResponseAccept:
		return h.answerAccept(p, proposal)
	}

	return InvalidTransactionf("unknown answer response")
}

// answerAutoFill implements the buyDGC/sellDGC market-order fill path
// shared by autoOPEN (partial fill, proposal stays live) and autoCLOSE
// (final fill, proposal closes and settles any matched exchanges).
func (h *handlerCtx) answerAutoFill(p *AnswerProposalAction, proposal *Proposal, finalStatus ProposalStatus, writeExchanges bool) error {
	switch proposal.Role {
	case RoleBuyDGC:
		issuer, err := h.a.GetParticipant(proposal.IssuingParticipant)
		if err != nil {
			return err
		}
		if issuer == nil {
			return InvalidTransactionf("issuing participant does not exist: %s", proposal.IssuingParticipant)
		}
		newBalance := issuer.CurrentBalance() + p.DgCoinAmount
		issuer.DgCoinBalances = append(issuer.DgCoinBalances, CreditBalance{
			ProposalID:   p.ProposalID,
			Timestamp:    h.timestamp,
			DgCoinAmount: newBalance,
		})
		if err := h.a.SetParticipant(*issuer); err != nil {
			return err
		}

	case RoleSellDGC:
		issuer, err := h.a.GetParticipant(proposal.IssuingParticipant)
		if err != nil {
			return err
		}
		if issuer == nil {
			return InvalidTransactionf("issuing participant does not exist: %s", proposal.IssuingParticipant)
		}
		if issuer.CurrentBalance()+issuer.CurrentCredit() < p.DgCoinAmount {
			return InvalidTransactionf("the dg coin balance of issuing participant is not enough: %s", proposal.IssuingParticipant)
		}
		newBalance := issuer.CurrentBalance() - p.DgCoinAmount
		issuer.DgCoinBalances = append(issuer.DgCoinBalances, CreditBalance{
			ProposalID:   p.ProposalID,
			Timestamp:    h.timestamp,
			DgCoinAmount: newBalance,
		})
		if err := h.a.SetParticipant(*issuer); err != nil {
			return err
		}

	default:
		// transferOwnership, transferCustodianship, authorizeReporter,
		// creditDGC, and transferDGC are no-ops for autoOPEN/autoCLOSE: no
		// state, including status, changes.
		return nil
	}

	if writeExchanges {
		for _, ex := range p.Exchanges {
			if err := h.a.SetExchange(Exchange{
				BuyProposalID:     ex.BuyProposalID,
				SellProposalID:    ex.SellProposalID,
				Timestamp:         ex.Timestamp,
				CurrencyIsoCodes:  ex.CurrencyIsoCodes,
				LastCurrencyPrice: ex.LastCurrencyPrice,
				LastDgcPrice:      ex.LastDgcPrice,
			}); err != nil {
				return err
			}
		}
	}

	proposal.DgCoinExchanged += p.DgCoinAmount
	proposal.Status = finalStatus
	return h.a.SetProposal(*proposal)
}

// answerAccept implements the ACCEPT response: only the receiving
// participant may accept, and the effect depends on the proposal's role.
func (h *handlerCtx) answerAccept(p *AnswerProposalAction, proposal *Proposal) error {
	if proposal.ReceivingParticipant != h.signer {
		return InvalidTransactionf("only the receiving participant can accept a proposal")
	}

	receiver, err := h.a.GetParticipant(p.ReceivingParticipant)
	if err != nil {
		return err
	}
	if receiver == nil {
		return InvalidTransactionf("receiving participant does not exist: %s", p.ReceivingParticipant)
	}

	switch proposal.Role {
	case RoleCreditDGC:
		receiver.DgCoinCredits = append(receiver.DgCoinCredits, CreditBalance{
			ProposalID:   p.ProposalID,
			Timestamp:    h.timestamp,
			DgCoinAmount: receiver.CurrentCredit() + p.DgCoinAmount,
		})
		if err := h.a.SetParticipant(*receiver); err != nil {
			return err
		}

	case RoleTransferDGC:
		issuer, err := h.a.GetParticipant(proposal.IssuingParticipant)
		if err != nil {
			return err
		}
		if issuer == nil {
			return InvalidTransactionf("issuing participant does not exist: %s", proposal.IssuingParticipant)
		}
		if issuer.CurrentBalance() < p.DgCoinAmount {
			return InvalidTransactionf("the dg coin balance of issuing participant is not enough: %s", proposal.IssuingParticipant)
		}
		issuer.DgCoinBalances = append(issuer.DgCoinBalances, CreditBalance{
			ProposalID:   p.ProposalID,
			Timestamp:    h.timestamp,
			DgCoinAmount: issuer.CurrentBalance() - p.DgCoinAmount,
		})
		if err := h.a.SetParticipant(*issuer); err != nil {
			return err
		}
		receiver.DgCoinBalances = append(receiver.DgCoinBalances, CreditBalance{
			ProposalID:   p.ProposalID,
			Timestamp:    h.timestamp,
			DgCoinAmount: receiver.CurrentBalance() + p.DgCoinAmount,
		})
		if err := h.a.SetParticipant(*receiver); err != nil {
			return err
		}

	case RoleTransferOwnership:
		if err := h.acceptTransferOwnership(p, proposal); err != nil {
			return err
		}

	case RoleTransferCustodianship:
		record, err := h.a.GetRecord(p.RecordID)
		if err != nil {
			return err
		}
		if record == nil {
			return InvalidTransactionf("record in proposal does not exist: %s", p.RecordID)
		}
		record.Custodians = append(record.Custodians, AssociatedParticipant{
			ParticipantID: p.ReceivingParticipant,
			Timestamp:     h.timestamp,
		})
		if err := h.a.SetRecord(*record); err != nil {
			return err
		}

	case RoleAuthorizeReporter:
		for _, propName := range proposal.Properties {
			prop, err := h.a.GetProperty(p.RecordID, propName)
			if err != nil {
				return err
			}
			if prop == nil {
				return InvalidTransactionf("property does not exist: %s", propName)
			}
			prop.Reporters = append(prop.Reporters, Reporter{
				PublicKey:  p.ReceivingParticipant,
				Authorized: true,
				Index:      len(prop.Reporters),
			})
			if err := h.a.SetProperty(*prop); err != nil {
				return err
			}
		}

	case RoleBuyDGC, RoleSellDGC:
		// no-op under ACCEPT; these roles settle via autoOPEN/autoCLOSE.
	}

	proposal.Status = ProposalStatusAccepted
	return h.a.SetProposal(*proposal)
}

// acceptTransferOwnership appends the receiver to the record's owners and,
// for every property of the record's table, reauthorizes reporters: the
// prior owner's reporter (if any) is marked unauthorized and the receiver's
// reporter is authorized, assigned a fresh index if it did not already
// exist.
func (h *handlerCtx) acceptTransferOwnership(p *AnswerProposalAction, proposal *Proposal) error {
	record, err := h.a.GetRecord(p.RecordID)
	if err != nil {
		return err
	}
	if record == nil {
		return InvalidTransactionf("record in proposal does not exist: %s", p.RecordID)
	}

	priorOwner, ok := record.CurrentOwner()
	if !ok {
		return InvalidTransactionf("owner not found for record: %s", p.RecordID)
	}

	record.Owners = append(record.Owners, AssociatedParticipant{
		ParticipantID: p.ReceivingParticipant,
		Timestamp:     h.timestamp,
	})
	if err := h.a.SetRecord(*record); err != nil {
		return err
	}

	table, err := h.a.GetTable(record.Table)
	if err != nil {
		return err
	}
	if table == nil {
		return InvalidTransactionf("table does not exist: %s", record.Table)
	}

	for _, schema := range table.Properties {
		prop, err := h.a.GetProperty(p.RecordID, schema.Name)
		if err != nil {
			return err
		}
		if prop == nil {
			return InvalidTransactionf("property does not exist: %s", schema.Name)
		}

		receiverFound := false
		for i, r := range prop.Reporters {
			switch r.PublicKey {
			case priorOwner.ParticipantID:
				prop.Reporters[i].Authorized = false
			case p.ReceivingParticipant:
				prop.Reporters[i].Authorized = true
				receiverFound = true
			}
		}
		if !receiverFound {
			prop.Reporters = append(prop.Reporters, Reporter{
				PublicKey:  p.ReceivingParticipant,
				Authorized: true,
				Index:      len(prop.Reporters),
			})
		}

		if err := h.a.SetProperty(*prop); err != nil {
			return err
		}
	}

	return nil
}
