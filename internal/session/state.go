package session

// AuthorizationState is round-tripped through the provider's redirect flow
type AuthorizationState struct {
	Nonce  string `json:"nonce"`
	Screen string `json:"screen"`
}
