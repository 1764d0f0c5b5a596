package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	ADP    ADPConfig    `yaml:"adp" mapstructure:"adp"`
	Budget BudgetConfig `yaml:"budget" mapstructure:"budget"`
	Load   LoadConfig   `yaml:"load" mapstructure:"load"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures access to the IMES store. Sources are tried in
// order: the primary DSN, each fallback, then the containerized client.
type StoreConfig struct {
	Driver      string         `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string         `yaml:"database_url" mapstructure:"database_url"`
	Fallbacks   []SourceConfig `yaml:"fallbacks" mapstructure:"fallbacks"`
	Exec        ExecConfig     `yaml:"exec" mapstructure:"exec"`
	Tables      TablesConfig   `yaml:"tables" mapstructure:"tables"`
}

// SourceConfig is one direct database connection.
type SourceConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ExecConfig configures the containerized database client.
type ExecConfig struct {
	Enabled     bool               `yaml:"enabled" mapstructure:"enabled"`
	Runtime     string             `yaml:"runtime" mapstructure:"runtime"`
	Containers  []string           `yaml:"containers" mapstructure:"containers"`
	Image       string             `yaml:"image" mapstructure:"image"`
	Client      string             `yaml:"client" mapstructure:"client"`
	Database    string             `yaml:"database" mapstructure:"database"`
	Credentials []CredentialConfig `yaml:"credentials" mapstructure:"credentials"`
}

// CredentialConfig is one login tried against the container.
type CredentialConfig struct {
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	PasswordEnv string `yaml:"password_env" mapstructure:"password_env"`
}

// TablesConfig names the reference tables.
type TablesConfig struct {
	Departments string `yaml:"departments" mapstructure:"departments"`
	Subcounties string `yaml:"subcounties" mapstructure:"subcounties"`
	Wards       string `yaml:"wards" mapstructure:"wards"`
}

// MatchConfig tunes department matching and unmatched-label suggestions.
type MatchConfig struct {
	DepartmentAliases map[string]string `yaml:"department_aliases" mapstructure:"department_aliases"`
	RejectWords       []string          `yaml:"reject_words" mapstructure:"reject_words"`
	SuggestThreshold  float64           `yaml:"suggest_threshold" mapstructure:"suggest_threshold"`
}

// ADPConfig configures the ADP mapping run.
type ADPConfig struct {
	Source           string `yaml:"source" mapstructure:"source"`
	Template         string `yaml:"template" mapstructure:"template"`
	Output           string `yaml:"output" mapstructure:"output"`
	DefaultTimeframe string `yaml:"default_timeframe" mapstructure:"default_timeframe"`
}

// BudgetConfig configures the budget run.
type BudgetConfig struct {
	Source     string `yaml:"source" mapstructure:"source"`
	Template   string `yaml:"template" mapstructure:"template"`
	Output     string `yaml:"output" mapstructure:"output"`
	Format     string `yaml:"format" mapstructure:"format"`
	BudgetName string `yaml:"budget_name" mapstructure:"budget_name"`
	FinYear    string `yaml:"fin_year" mapstructure:"fin_year"`
}

// LoadConfig configures bulk CSV loads.
type LoadConfig struct {
	Plan      string `yaml:"plan" mapstructure:"plan"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "mysql")
	v.SetDefault("store.database_url", "impesUser:@tcp(localhost:3307)/imbesdb?charset=utf8mb4")
	v.SetDefault("store.fallbacks", []map[string]any{
		{"driver": "mysql", "database_url": "impesUser:@tcp(127.0.0.1:3307)/imbesdb?charset=utf8mb4"},
	})
	v.SetDefault("store.exec.enabled", true)
	v.SetDefault("store.exec.runtime", "docker")
	v.SetDefault("store.exec.containers", []string{"kisumu_db", "db"})
	v.SetDefault("store.exec.image", "mysql:8.0")
	v.SetDefault("store.exec.client", "mysql")
	v.SetDefault("store.exec.database", "imbesdb")
	v.SetDefault("store.exec.credentials", []map[string]any{
		{"user": "root", "password_env": "MYSQL_ROOT_PASSWORD"},
	})
	v.SetDefault("store.tables.departments", "kemri_departments")
	v.SetDefault("store.tables.subcounties", "kemri_subcounties")
	v.SetDefault("store.tables.wards", "kemri_wards")
	v.SetDefault("match.department_aliases", map[string]string{"CITY": "CITY OF KISUMU"})
	v.SetDefault("match.reject_words", []string{"MUNICIPALITY", "ASSEMBLY"})
	v.SetDefault("match.suggest_threshold", 0.85)
	v.SetDefault("adp.source", "adp/ADP.xlsx")
	v.SetDefault("adp.template", "adp/projects_import_template.xls")
	v.SetDefault("adp.output", "adp/adp_mapping.xlsx")
	v.SetDefault("adp.default_timeframe", "2025_26")
	v.SetDefault("budget.source", "budget/budget.xlsx")
	v.SetDefault("budget.output", "budget/budget_import.xlsx")
	v.SetDefault("budget.format", "import")
	v.SetDefault("budget.budget_name", "Approved Budget FY 2025/2026")
	v.SetDefault("budget.fin_year", "2025/2026")
	v.SetDefault("load.batch_size", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on. mode is the command
// name: "adp", "budget", "load", "match" or "refs".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "adp":
		if c.ADP.Source == "" {
			errs = append(errs, "adp.source is required")
		}
		if c.ADP.Output == "" {
			errs = append(errs, "adp.output is required")
		}
	case "budget":
		if c.Budget.Source == "" {
			errs = append(errs, "budget.source is required")
		}
		if c.Budget.Output == "" {
			errs = append(errs, "budget.output is required")
		}
		if c.Budget.Format != "import" && c.Budget.Format != "mapping" {
			errs = append(errs, fmt.Sprintf("budget.format must be import or mapping, got %q", c.Budget.Format))
		}
	case "load":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if c.Load.BatchSize < 1 {
			errs = append(errs, "load.batch_size must be > 0")
		}
	case "match", "refs":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode != "load" && c.Store.DatabaseURL == "" && len(c.Store.Fallbacks) == 0 && !c.Store.Exec.Enabled {
		errs = append(errs, "store: no data source configured")
	}
	if c.Match.SuggestThreshold < 0 || c.Match.SuggestThreshold > 1 {
		errs = append(errs, "match.suggest_threshold must be between 0 and 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
