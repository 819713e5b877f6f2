package model

// EphemeralToken is a short-lived provider-issued credential substitute.
// Name is the opaque identifier handed to the browser; RemainingUses is the
// use budget granted at mint time. Expiry is tracked by the provider, not here.
type EphemeralToken struct {
	Name          string
	RemainingUses int
}
