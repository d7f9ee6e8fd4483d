package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules applied to all loggers
	MigrationSourceURL string // location of migration files (empty: embedded)
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry ("stdout" prints spans)
	AbbreviationsFile  string // path to the abbreviation file
	StartLogFile       string // path to the start log
	EndLogFile         string // path to the end log
	ServerAddr         string // listen addr for the REST server
	WatchInput         bool   // re-import when input files change
)

