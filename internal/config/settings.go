package config

import "strconv"

// Settings carries application-level toggles and SMTP parameters loaded
// from the environment. The two Strict* flags gate validation the
// legacy system never performed; both default off to preserve its
// observable behavior.
type Settings struct {
	Port    string
	BaseURL string

	ActivationRequired  bool
	TwoFAEnabled        bool
	StrictPoolOverlap   bool
	StrictAssigneeCheck bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// App holds the active settings. Populated by LoadSettings at startup;
// tests mutate it directly.
var App Settings

// LoadSettings reads all application settings from the environment.
func LoadSettings() {
	App = Settings{
		Port:    getEnv("PORT", "8080"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		ActivationRequired:  getBoolEnv("ACTIVATION_REQUIRED", false),
		TwoFAEnabled:        getBoolEnv("TWOFA_ENABLED", false),
		StrictPoolOverlap:   getBoolEnv("STRICT_POOL_OVERLAP", false),
		StrictAssigneeCheck: getBoolEnv("STRICT_ASSIGNEE_CHECK", false),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getIntEnv("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@netops.local"),
	}
}

func getBoolEnv(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue))); err == nil {
		return v
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue))); err == nil {
		return v
	}
	return defaultValue
}
