package dto

// TransitionRequest moves a document to a target state.
type TransitionRequest struct {
	Target string `json:"target" binding:"required,oneof=draft pending approved rejected cancelled completed"`
	Reason string `json:"reason"`
}

// CreateDocumentRequest registers a document in the lifecycle store.
type CreateDocumentRequest struct {
	DocType string `json:"docType" binding:"required"`
	Number  string `json:"number" binding:"required"`
}
