package core

import (
	"encoding/json"
	"sort"
)

// StateContext is the host capability this core consumes: addressed
// get/set of opaque byte blobs. get returns only the addresses that exist;
// set is atomic within whatever transaction boundary the host defines. The
// core never caches across calls — the context is the source of truth, the
// way the teacher's StateRW is the single source of truth for ledger state.
type StateContext interface {
	GetState(addresses []string) (map[string][]byte, error)
	SetState(entries map[string][]byte) error
}

// Accessor exposes typed getters/setters per entity kind over a
// StateContext. A setter reads the container at the address, removes any
// entry matching the natural key, appends the new entry, re-sorts by
// natural key, serializes, and writes — the container discipline that
// resolves hash-prefix collisions and guarantees canonical bytes at rest.
type Accessor struct {
	ctx StateContext
}

// NewAccessor returns an Accessor backed by ctx.
func NewAccessor(ctx StateContext) *Accessor {
	return &Accessor{ctx: ctx}
}

func getContainer[T any](a *Accessor, address string) ([]T, error) {
	res, err := a.ctx.GetState([]string{address})
	if err != nil {
		return nil, Internalf(err, "read state at %s", address)
	}
	raw, ok := res[address]
	if !ok {
		return nil, nil
	}
	var container []T
	if err := json.Unmarshal(raw, &container); err != nil {
		return nil, Internalf(err, "decode container at %s", address)
	}
	return container, nil
}

func setContainer[T any](a *Accessor, address string, container []T) error {
	data, err := json.Marshal(container)
	if err != nil {
		return Internalf(err, "encode container at %s", address)
	}
	return a.ctx.SetState(map[string][]byte{address: data})
}

// upsert removes any element whose key matches item's key, then appends
// item. The caller re-sorts afterward.
func upsert[T any](list []T, item T, key func(T) string) []T {
	k := key(item)
	out := make([]T, 0, len(list)+1)
	for _, x := range list {
		if key(x) != k {
			out = append(out, x)
		}
	}
	out = append(out, item)
	return out
}

//---------------------------------------------------------------------
// Participant
//---------------------------------------------------------------------

func (a *Accessor) GetParticipant(publicKey string) (*Participant, error) {
	container, err := getContainer[Participant](a, ParticipantAddress(publicKey))
	if err != nil {
		return nil, err
	}
	for i := range container {
		if container[i].PublicKey == publicKey {
			p := container[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (a *Accessor) SetParticipant(p Participant) error {
	addr := ParticipantAddress(p.PublicKey)
	container, err := getContainer[Participant](a, addr)
	if err != nil {
		return err
	}
	container = upsert(container, p, func(x Participant) string { return x.PublicKey })
	sort.Slice(container, func(i, j int) bool { return container[i].PublicKey < container[j].PublicKey })
	return setContainer(a, addr, container)
}

//---------------------------------------------------------------------
// Table
//---------------------------------------------------------------------

func (a *Accessor) GetTable(name string) (*Table, error) {
	container, err := getContainer[Table](a, TableAddress(name))
	if err != nil {
		return nil, err
	}
	for i := range container {
		if container[i].Name == name {
			t := container[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (a *Accessor) SetTable(t Table) error {
	addr := TableAddress(t.Name)
	container, err := getContainer[Table](a, addr)
	if err != nil {
		return err
	}
	container = upsert(container, t, func(x Table) string { return x.Name })
	sort.Slice(container, func(i, j int) bool { return container[i].Name < container[j].Name })
	return setContainer(a, addr, container)
}

//---------------------------------------------------------------------
// Record
//---------------------------------------------------------------------

func (a *Accessor) GetRecord(recordID string) (*Record, error) {
	container, err := getContainer[Record](a, RecordAddress(recordID))
	if err != nil {
		return nil, err
	}
	for i := range container {
		if container[i].RecordID == recordID {
			r := container[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (a *Accessor) SetRecord(r Record) error {
	addr := RecordAddress(r.RecordID)
	container, err := getContainer[Record](a, addr)
	if err != nil {
		return err
	}
	container = upsert(container, r, func(x Record) string { return x.RecordID })
	sort.Slice(container, func(i, j int) bool { return container[i].RecordID < container[j].RecordID })
	return setContainer(a, addr, container)
}

//---------------------------------------------------------------------
// Property (stored at page 0 of its address range)
//---------------------------------------------------------------------

func propertyKey(recordID, name string) string { return recordID + "\x00" + name }

func (a *Accessor) GetProperty(recordID, name string) (*Property, error) {
	container, err := getContainer[Property](a, PropertyAddress(recordID, name, 0))
	if err != nil {
		return nil, err
	}
	for i := range container {
		if container[i].RecordID == recordID && container[i].Name == name {
			p := container[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (a *Accessor) SetProperty(p Property) error {
	addr := PropertyAddress(p.RecordID, p.Name, 0)
	container, err := getContainer[Property](a, addr)
	if err != nil {
		return err
	}
	container = upsert(container, p, func(x Property) string { return propertyKey(x.RecordID, x.Name) })
	sort.Slice(container, func(i, j int) bool {
		return propertyKey(container[i].RecordID, container[i].Name) < propertyKey(container[j].RecordID, container[j].Name)
	})
	return setContainer(a, addr, container)
}

//---------------------------------------------------------------------
// PropertyPage
//---------------------------------------------------------------------

func pageKey(recordID, name string, page int) string {
	return recordID + "\x00" + name + "\x00" + pageHex(page)
}

func (a *Accessor) GetPropertyPage(recordID, name string, page int) (*PropertyPage, error) {
	container, err := getContainer[PropertyPage](a, PropertyAddress(recordID, name, page))
	if err != nil {
		return nil, err
	}
	for i := range container {
		if container[i].RecordID == recordID && container[i].Name == name && container[i].PageNumber == page {
			pp := container[i]
			return &pp, nil
		}
	}
	return nil, nil
}

func (a *Accessor) SetPropertyPage(pp PropertyPage) error {
	addr := PropertyAddress(pp.RecordID, pp.Name, pp.PageNumber)
	container, err := getContainer[PropertyPage](a, addr)
	if err != nil {
		return err
	}
	container = upsert(container, pp, func(x PropertyPage) string { return pageKey(x.RecordID, x.Name, x.PageNumber) })
	sort.Slice(container, func(i, j int) bool {
		return pageKey(container[i].RecordID, container[i].Name, container[i].PageNumber) <
			pageKey(container[j].RecordID, container[j].Name, container[j].PageNumber)
	})
	return setContainer(a, addr, container)
}

//---------------------------------------------------------------------
// Proposal
//---------------------------------------------------------------------

func (a *Accessor) GetProposal(proposalID string) (*Proposal, error) {
	container, err := getContainer[Proposal](a, ProposalAddress(proposalID))
	if err != nil {
		return nil, err
	}
	for i := range container {
		if container[i].ProposalID == proposalID {
			p := container[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (a *Accessor) SetProposal(p Proposal) error {
	addr := ProposalAddress(p.ProposalID)
	container, err := getContainer[Proposal](a, addr)
	if err != nil {
		return err
	}
	container = upsert(container, p, func(x Proposal) string { return x.ProposalID })
	sort.Slice(container, func(i, j int) bool { return container[i].ProposalID < container[j].ProposalID })
	return setContainer(a, addr, container)
}

//---------------------------------------------------------------------
// Exchange
//---------------------------------------------------------------------

func exchangeKey(buy, sell string) string { return buy + "\x00" + sell }

func (a *Accessor) GetExchange(buyProposalID, sellProposalID string) (*Exchange, error) {
	container, err := getContainer[Exchange](a, ExchangeAddress(buyProposalID, sellProposalID))
	if err != nil {
		return nil, err
	}
	for i := range container {
		if container[i].BuyProposalID == buyProposalID && container[i].SellProposalID == sellProposalID {
			e := container[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (a *Accessor) SetExchange(e Exchange) error {
	addr := ExchangeAddress(e.BuyProposalID, e.SellProposalID)
	container, err := getContainer[Exchange](a, addr)
	if err != nil {
		return err
	}
	container = upsert(container, e, func(x Exchange) string { return exchangeKey(x.BuyProposalID, x.SellProposalID) })
	sort.Slice(container, func(i, j int) bool {
		return exchangeKey(container[i].BuyProposalID, container[i].SellProposalID) <
			exchangeKey(container[j].BuyProposalID, container[j].SellProposalID)
	})
	return setContainer(a, addr, container)
}
