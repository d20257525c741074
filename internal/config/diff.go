package config

// ConfigDiff describes what changed between two configs. Only fields that can
// be safely hot-reloaded without restarting the server are tracked; transport
// and address changes always require a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// TokenChanged reports a new upstream access token. The YNAB client
	// re-reads its token per request, so this takes effect immediately.
	TokenChanged bool
	NewToken     string
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.YNAB.AccessToken != new.YNAB.AccessToken {
		d.TokenChanged = true
		d.NewToken = new.YNAB.AccessToken
	}
	return d
}
