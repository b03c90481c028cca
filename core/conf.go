package core

type Conf struct {
	Version            string  `long:"version" description:"version of progcheck" env:"PROGCHECK_VERSION"`
	DevMode            bool    `long:"dev-mode" description:"run in dev mode" env:"PROGCHECK_DEV_MODE"`
	DisableStdoutLog   bool    `long:"disable-stdout-log" description:"do not log in standard output" env:"PROGCHECK_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool    `long:"enable-file-log" description:"enable log in file" env:"PROGCHECK_ENABLE_FILE_LOG"`
	LogDir             string  `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"PROGCHECK_LOG_DIR"`
	LogLevel           string  `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"PROGCHECK_LOG_LEVEL"`
	LogRotationMaxDays int     `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"PROGCHECK_LOG_ROTATION_MAX_DAYS"`
	EnableVerdictLog   bool    `long:"enable-verdict-log" description:"write one line per finished check to a daily file" env:"PROGCHECK_ENABLE_VERDICT_LOG"`
	Backend            string  `long:"backend" description:"backend that runs the programs" default:"statevector" choice:"statevector" choice:"dummy" env:"PROGCHECK_BACKEND"`
	DeviceSettingPath  string  `long:"device-setting-path" description:"device setting file path" default:"./device_setting.toml" env:"PROGCHECK_DEVICE_SETTING_PATH"`
	SettingPath        string  `long:"setting-path" description:"setting file path" env:"PROGCHECK_SETTING_PATH"`
	Workers            int     `long:"workers" description:"number of checks run concurrently" default:"1" env:"PROGCHECK_WORKERS"`
	QueueMaxSize       int     `long:"queue-max-size" description:"queue max size" default:"100" env:"PROGCHECK_QUEUE_MAX_SIZE"`
	RateLimit          float64 `long:"rate-limit" description:"max backend runs per second, 0 for unlimited" default:"0" env:"PROGCHECK_RATE_LIMIT"`
	RunTimeout         int     `long:"run-timeout" description:"timeout of a single backend run in milliseconds, 0 for none" default:"0" env:"PROGCHECK_RUN_TIMEOUT"`
	Seed               int64   `long:"seed" description:"seed of the random inputs, 0 for time based" default:"0" env:"PROGCHECK_SEED"`
}
