package configuration

import "github.com/adampresley/configinator"

type Config struct {
	CookieSecret       string `flag:"cookiesecret" env:"COOKIE_SECRET" default:"password" description:"Secret for encoding cookies"`
	CoverImageHosts    string `flag:"coverhosts" env:"COVER_IMAGE_HOSTS" default:"coverartarchive.org,i.scdn.co" description:"Comma-separated list of hosts cover images may be served from"`
	DSN                string `flag:"dsn" env:"DSN" default:"file:./data/albumshare.db" description:"Data source name"`
	GoogleClientID     string `flag:"googleclientid" env:"GOOGLE_CLIENT_ID" default:"" description:"Google OAuth client ID"`
	GoogleClientSecret string `flag:"googleclientsecret" env:"GOOGLE_CLIENT_SECRET" default:"" description:"Google OAuth client secret"`
	GoogleRedirectURL  string `flag:"googleredirecturl" env:"GOOGLE_REDIRECT_URL" default:"http://localhost:8080/auth/callback" description:"OAuth callback URL registered with Google"`
	Host               string `flag:"host" env:"HOST" default:"localhost:8080" description:"The address and port to bind the HTTP server to"`
	LogLevel           string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
