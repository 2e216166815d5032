package core

import "github.com/sirupsen/logrus"

// Processor dispatches decoded payloads to action handlers, the way the
// teacher's AuthoritySet and Coin pair a logger with a state-backed
// operation set. A Processor is stateless and safe to share; the
// StateContext supplied to Apply is the only mutable collaborator.
type Processor struct {
	log *logrus.Entry
}

// NewProcessor returns a Processor that logs under the family name.
func NewProcessor() *Processor {
	return &Processor{log: logrus.WithField("family", FamilyName)}
}

func actionName(a ActionType) string {
	switch a {
	case ActionCreateParticipant:
		return "CreateParticipant"
	case ActionCreateTable:
		return "CreateTable"
	case ActionCreateRecord:
		return "CreateRecord"
	case ActionFinalizeRecord:
		return "FinalizeRecord"
	case ActionUpdateProperties:
		return "UpdateProperties"
	case ActionCreateProposal:
		return "CreateProposal"
	case ActionAnswerProposal:
		return "AnswerProposal"
	case ActionRevokeReporter:
		return "RevokeReporter"
	default:
		return "Unknown"
	}
}

// Apply decodes rawPayload, dispatches it to the matching handler, and
// applies its effects through ctx. A single transaction runs to completion
// — success or failure — before the host presents the next one; there is
// no suspension point inside this call.
func (proc *Processor) Apply(ctx StateContext, signer string, rawPayload []byte) error {
	payload, err := DecodePayload(rawPayload)
	if err != nil {
		proc.log.WithError(err).Warn("payload rejected")
		return err
	}

	entry := proc.log.WithFields(logrus.Fields{
		"signer": signer,
		"action": actionName(payload.Action),
	})

	a := NewAccessor(ctx)
	h := &handlerCtx{a: a, signer: signer, timestamp: payload.Timestamp}

	var applyErr error
	switch payload.Action {
	case ActionCreateParticipant:
		applyErr = h.createParticipant(payload.CreateParticipant)
	case ActionCreateTable:
		applyErr = h.createTable(payload.CreateTable)
	case ActionCreateRecord:
		applyErr = h.createRecord(payload.CreateRecord)
	case ActionFinalizeRecord:
		applyErr = h.finalizeRecord(payload.FinalizeRecord)
	case ActionUpdateProperties:
		applyErr = h.updateProperties(payload.UpdateProperties)
	case ActionCreateProposal:
		applyErr = h.createProposal(payload.CreateProposal)
	case ActionAnswerProposal:
		applyErr = h.answerProposal(payload.AnswerProposal)
	case ActionRevokeReporter:
		applyErr = h.revokeReporter(payload.RevokeReporter)
	}

	if applyErr != nil {
		if IsInternalError(applyErr) {
			entry.WithError(applyErr).Error("transaction failed")
		} else {
			entry.WithError(applyErr).Warn("transaction rejected")
		}
		return applyErr
	}

	entry.Info("transaction applied")
	return nil
}

// handlerCtx carries the per-transaction collaborators every handler needs:
// the accessor, the authenticated signer, and the payload's timestamp.
type handlerCtx struct {
	a         *Accessor
	signer    string
	timestamp uint64
}
