package configuration

import "github.com/adampresley/configinator"

type Config struct {
	DryRun     bool   `flag:"dryrun" env:"DRY_RUN" default:"false" description:"No database writes; still saves the JSON dump"`
	DSN        string `flag:"dsn" env:"DSN" default:"file:./data/albumshare.db" description:"Data source name"`
	FromJSON   string `flag:"fromjson" env:"FROM_JSON" default:"" description:"Load releases from an existing JSON dump instead of refetching"`
	LogLevel   string `flag:"loglevel" env:"LOG_LEVEL" default:"info" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxWorkers int    `flag:"maxworkers" env:"MAX_WORKERS" default:"8" description:"Maximum number of concurrent normalization workers"`
	Month      int    `flag:"month" env:"MONTH" default:"0" description:"Month to fetch (1-12, required unless -fromjson)"`
	Out        string `flag:"out" env:"OUT" default:"" description:"Explicit output JSON path (overrides the -outdir default naming)"`
	OutDir     string `flag:"outdir" env:"OUT_DIR" default:"mb_out" description:"Folder to store JSON dumps"`
	SleepMs    int    `flag:"sleep" env:"SLEEP_MS" default:"1100" description:"Delay between MusicBrainz requests in milliseconds"`
	Stage      bool   `flag:"stage" env:"STAGE" default:"false" description:"Upsert rows into the staging table"`
	Write      bool   `flag:"write" env:"WRITE" default:"false" description:"Upsert rows into the albums table"`
	Year       int    `flag:"year" env:"YEAR" default:"0" description:"Year to fetch (required unless -fromjson)"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}
