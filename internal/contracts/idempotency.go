package contracts

// IdempotentResponse is the stored outcome of a request replayed for a repeated key.
type IdempotentResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}
