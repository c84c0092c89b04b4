package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

func ErrorDetails(message string, details map[string]string) Envelope {
	return Envelope{"error": message, "details": details}
}

func Success() Envelope {
	return Envelope{"success": true}
}
