package options

// SecretString holds a credential such as a bot token. It prints as
// "**redacted**" with the fmt verbs and in debug logs; Unwrap returns the
// real value.
type SecretString struct {
	s *string
}

func NewSecretString(s string) SecretString {
	return SecretString{s: &s}
}

func (s SecretString) GoString() string {
	return `"` + s.String() + `"`
}

func (s SecretString) String() string {
	if s.Empty() {
		return ``
	}
	return `**redacted**`
}

// Empty reports whether no secret is set.
func (s SecretString) Empty() bool {
	return s.s == nil || len(*s.s) == 0
}

func (s *SecretString) Unwrap() string {
	if s.s == nil {
		return ""
	}
	return *s.s
}

// MarshalText returns the real value, so the secret survives being written
// to the secrets file.
func (s SecretString) MarshalText() ([]byte, error) {
	return []byte(s.Unwrap()), nil
}

func (s *SecretString) UnmarshalText(text []byte) error {
	*s = NewSecretString(string(text))
	return nil
}
