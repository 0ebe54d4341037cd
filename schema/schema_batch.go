package schema

// BatchFile is the on-disk layout of a batch evaluation request file.
type BatchFile struct {
	Requests []BatchRequest `yaml:"requests" json:"requests"`
}

// BatchRequest is one independent calculation in a batch.
type BatchRequest struct {
	ID      string       `yaml:"id" json:"id"`
	Family  string       `yaml:"family" json:"family"`
	Variant string       `yaml:"variant" json:"variant"`
	Inputs  FormulaInput `yaml:"inputs" json:"inputs"`
}

// BatchItemResult pairs a request with its outcome. Exactly one of Result and Error is set.
type BatchItemResult struct {
	Index   int            `json:"index"`
	Request BatchRequest   `json:"request"`
	Result  *FormulaResult `json:"result,omitempty"`
	Error   *FormulaError  `json:"error,omitempty"`
}

// Succeeded reports whether the item produced a result.
func (b BatchItemResult) Succeeded() bool {
	return b.Error == nil && b.Result != nil
}
