package domain

// Profile is a named bundle of credentials and endpoint settings for one
// upstream chat deployment. Values are read once and never mutated.
type Profile struct {
	Name         string
	APIKey       string
	APIVersion   string
	Endpoint     string
	Deployment   string
	ModelName    string
	SystemPrompt string
}

// SpeechCredentials holds the subscription used for speech token exchange.
type SpeechCredentials struct {
	Region          string
	SubscriptionKey string
}

// SpeechToken is an ephemeral token handed to the browser speech SDK.
type SpeechToken struct {
	Token     string `json:"token"`
	Region    string `json:"region"`
	ExpiresIn int    `json:"expiresIn"`
}
