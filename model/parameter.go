package model

// DecodedParameter is one decoded argument of a contract call, in the order
// the function signature declares it.
type DecodedParameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}
