package model

type RequestRevision struct {
	Comment string `json:"comment"`
}
