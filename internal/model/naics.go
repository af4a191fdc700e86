package model

// NaicsNode is a single entry of the industry taxonomy.
type NaicsNode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
