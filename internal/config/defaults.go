package config

const (
	defaultBind              = "127.0.0.1:8420"
	defaultDatabase          = "~/.local/share/assetdesk/assetdesk.db"
	defaultLogLevel          = "info"
	defaultLoginRateSeconds  = 2
	defaultLoginBurst        = 5
	defaultGeoTimeoutSeconds = 10
	defaultGeoMaxAgeSeconds  = 300
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:     defaultBind,
			Database: defaultDatabase,
		},
		Auth: Auth{
			LoginRateSecond: defaultLoginRateSeconds,
			LoginBurst:      defaultLoginBurst,
		},
		Geolocation: Geolocation{
			TimeoutSeconds: defaultGeoTimeoutSeconds,
			MaxAgeSeconds:  defaultGeoMaxAgeSeconds,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
