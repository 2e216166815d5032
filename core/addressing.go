package core

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
)

// FamilyName identifies this transaction family to the host, the way the
// teacher's AuthoritySet and Coin name their domain in log output.
const FamilyName = "dgc_REST_api"

// FamilyVersion is the single version this core implements.
const FamilyVersion = "1.1"

const (
	kindParticipant = "ae"
	kindProperty    = "ea"
	kindProposal    = "aa"
	kindRecord      = "ec"
	kindTable       = "ee"
	kindExchange    = "ce"
)

// Namespace is the 6 hex character address prefix every address in this
// family shares, derived once from FamilyName.
var Namespace = computeNamespace()

func computeNamespace() string {
	return hashHex(FamilyName)[:6]
}

// hashHex returns the full hex-encoded SHA-512 digest of s.
func hashHex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// hashPrefix returns the first n hex characters of SHA-512(s). n must not
// exceed 128 (the digest's hex length); callers only ever request short
// prefixes so out-of-range n indicates a programming error in this package.
func hashPrefix(s string, n int) string {
	h := hashHex(s)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

func pageHex(page int) string {
	return fmt.Sprintf("%04x", page)
}

// ParticipantAddress computes the 70-hex address for a participant keyed by
// public key.
func ParticipantAddress(publicKey string) string {
	return Namespace + kindParticipant + hashPrefix(publicKey, 62)
}

// RecordAddress computes the 70-hex address for a record keyed by record id.
func RecordAddress(recordID string) string {
	return Namespace + kindRecord + hashPrefix(recordID, 62)
}

// TableAddress computes the 70-hex address for a table keyed by name.
func TableAddress(name string) string {
	return Namespace + kindTable + hashPrefix(name, 62)
}

// propertyAddressRange is the address prefix shared by a record's Property
// entity and all of its PropertyPages; only the trailing page number varies.
func propertyAddressRange(recordID string) string {
	return Namespace + kindProperty + hashPrefix(recordID, 36)
}

// PropertyAddress computes the address for a property or one of its pages.
// Page 0 addresses the Property entity itself; pages 1..256 address
// PropertyPages.
func PropertyAddress(recordID, propertyName string, page int) string {
	return propertyAddressRange(recordID) + hashPrefix(propertyName, 22) + pageHex(page)
}

// ProposalAddress computes the 70-hex address for a proposal keyed by id.
func ProposalAddress(proposalID string) string {
	return Namespace + kindProposal + hashPrefix(proposalID, 62)
}

// ExchangeAddress computes the 70-hex address for an exchange keyed by the
// pair of matched proposal ids.
func ExchangeAddress(buyProposalID, sellProposalID string) string {
	return Namespace + kindExchange + hashPrefix(buyProposalID, 31) + hashPrefix(sellProposalID, 31)
}
