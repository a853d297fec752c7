package logger

// Config holds logger settings loaded from the environment.
type Config struct {
	Level   string     `env:"LOG_LEVEL" envDefault:"info"`
	Format  string     `env:"LOG_FORMAT" envDefault:"text"`
	Service string     `env:"SERVICE_NAME" envDefault:"authscreens"`
	File    FileConfig `envPrefix:"LOG_FILE_"`
}

// FileConfig enables a rotating log file when Path is set.
type FileConfig struct {
	Path       string `env:"PATH"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}
