package response

// MessageBody is the success envelope for operations without a payload.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorBody is returned for every non-2xx response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// ListBody wraps collection payloads.
type ListBody[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func Message(msg string) MessageBody {
	return MessageBody{Message: msg}
}

func Error(msg string, details map[string]string) ErrorBody {
	return ErrorBody{Error: msg, Details: details}
}

func List[T any](items []T) ListBody[T] {
	if items == nil {
		items = []T{}
	}
	return ListBody[T]{Data: items, Count: len(items)}
}
