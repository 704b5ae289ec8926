package usps

import "log/slog"

const redacted = "[REDACTED]"

// Credentials hold the account secrets. They are never serialized and
// format as a redacted placeholder in logs and error messages.
type Credentials struct {
	username string
	password string
}

func NewCredentials(username, password string) Credentials {
	return Credentials{username: username, password: password}
}

func (c Credentials) Empty() bool {
	return c.username == "" || c.password == ""
}

func (c Credentials) String() string {
	return redacted
}

func (c Credentials) GoString() string {
	return redacted
}

func (c Credentials) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

func (c Credentials) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
