package domain

// ActionKind identifies a currency-bearing submission type. The in-flight
// guard in the economy coordinator is scoped per kind, not globally.
type ActionKind string

const (
	ActionRedeem   ActionKind = "redeem"
	ActionReferral ActionKind = "referral"
)

// RedeemOutcome is the server's authoritative verdict on a redeem submission.
// FlowersAmount reports what the server credited; the displayed balance is
// still re-derived from a fresh current-user fetch, never from adding
// FlowersAmount locally.
type RedeemOutcome struct {
	Message       string `json:"message"`
	FlowersAmount int    `json:"flowersAmount"`
}

// ReferralOutcome is the server's authoritative verdict on a referral-code
// submission.
type ReferralOutcome struct {
	Bonus int `json:"bonus"`
}
